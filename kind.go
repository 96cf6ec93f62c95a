package main

import (
	"errors"
	"fmt"
)

// Kind classifies a module declaration: standard modules carry synchronous
// provision bindings, producer modules carry deferred production bindings.
type Kind int

const (
	KindModule Kind = iota
	KindProducer
)

// kindTable maps each kind to its module-level tag and its binding-method tag.
// Evaluated independently per declaration; mutual exclusivity is enforced at
// runtime by ResolveKind, not by construction.
var kindTable = [...]struct {
	kind      Kind
	moduleTag string
	methodTag string
}{
	{KindModule, AnnotModule, AnnotProvides},
	{KindProducer, AnnotProducer, AnnotProduces},
}

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindProducer:
		return "producer"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ModuleTag returns the module-level tag that marks a declaration as this kind.
func (k Kind) ModuleTag() string {
	return kindTable[k].moduleTag
}

// MethodTag returns the member tag that marks a binding method of this kind.
func (k Kind) MethodTag() string {
	return kindTable[k].methodTag
}

// IncludableKinds returns the kinds a module of kind k may legally include.
// Consumed by downstream validation; descriptor assembly records include edges
// without enforcing this.
func (k Kind) IncludableKinds() []Kind {
	switch k {
	case KindModule:
		return []Kind{KindModule}
	case KindProducer:
		return []Kind{KindModule, KindProducer}
	}
	return nil
}

// ErrKindConflict is returned when a declaration carries zero or more than one
// module-level kind tag.
var ErrKindConflict = errors.New("module kind conflict")

// ResolveKind determines the kind of a module declaration. Both candidate tags
// are tested independently; a declaration carrying zero or both is a fatal
// classification error. The kind's tag instance is returned alongside so the
// caller can read its attributes.
func ResolveKind(ts TypeSource, t TypeRef) (Kind, Annotation, error) {
	present := ts.KindTags(t)

	var matched []Kind
	var tags []Annotation
	for _, entry := range kindTable {
		for _, tag := range present {
			if tag.Kind == entry.moduleTag {
				matched = append(matched, entry.kind)
				tags = append(tags, tag)
				break
			}
		}
	}

	switch len(matched) {
	case 1:
		return matched[0], tags[0], nil
	case 0:
		return 0, Annotation{}, fmt.Errorf("%w: %s carries no module tag", ErrKindConflict, t)
	default:
		return 0, Annotation{}, fmt.Errorf(
			"%w: %s carries %d module tags, want exactly one", ErrKindConflict, t, len(matched))
	}
}

// moduleTagOf returns the first module-level tag of either kind present on t.
// Used by the inclusion resolver's per-level gate, which accepts both kinds.
func moduleTagOf(ts TypeSource, t TypeRef) (Annotation, bool) {
	present := ts.KindTags(t)
	for _, entry := range kindTable {
		if tag, ok := FindAnnotation(present, entry.moduleTag); ok {
			return tag, true
		}
	}
	return Annotation{}, false
}
