package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedInclude is returned when a declared or derived module
	// reference does not resolve to a known type.
	ErrUnresolvedInclude = errors.New("unresolved module reference")

	// ErrMalformedTag is returned when a tag attribute is structurally
	// invalid, such as an empty includes entry.
	ErrMalformedTag = errors.New("malformed tag")

	// ErrInclusionCycle is returned when modules include one another,
	// directly or through the supertype chain or implicit channel.
	ErrInclusionCycle = errors.New("module inclusion cycle")
)

// includeSet accumulates included descriptors, deduplicated by module
// identity in first-discovery order. Descriptors are rebuilt per discovery; a
// rediscovered module's rebuild is dropped here rather than merged.
type includeSet struct {
	order []*ModuleDescriptor
	seen  map[TypeRef]bool
}

func newIncludeSet() *includeSet {
	return &includeSet{seen: make(map[TypeRef]bool)}
}

func (s *includeSet) add(d *ModuleDescriptor) {
	if s.seen[d.Module] {
		return
	}
	s.seen[d.Module] = true
	s.order = append(s.order, d)
}

// collectIncluded resolves the full included-module set of a module. The
// result order is significant: supertype-chain contributions (outermost
// ancestor first), then the module's own declared includes, then implicit
// includes in member-enumeration order.
func (f *Factory) collectIncluded(module TypeRef, trail []TypeRef) ([]*ModuleDescriptor, error) {
	set := newIncludeSet()
	if err := f.collect(set, module, trail); err != nil {
		return nil, err
	}
	return set.order, nil
}

// collect walks one level of the inclusion graph: the supertype chain is
// visited before anything else, and only levels that themselves carry a
// module-level tag contribute includes of their own.
func (f *Factory) collect(set *includeSet, level TypeRef, trail []TypeRef) error {
	if super, ok := f.Source.Supertype(level); ok {
		if onTrail(trail, super) {
			return cycleError(trail, super)
		}
		if err := f.collect(set, super, append(trail, super)); err != nil {
			return err
		}
	}

	tag, ok := moduleTagOf(f.Source, level)
	if !ok {
		// A plain supertype with no module tag contributes nothing.
		return nil
	}

	names, err := includeList(level, tag)
	if err != nil {
		return err
	}
	for _, name := range names {
		target, ok := f.Source.ResolveType(name)
		if !ok {
			return fmt.Errorf("%w: %s, included by %s", ErrUnresolvedInclude, name, level)
		}
		if err := f.include(set, target, trail); err != nil {
			return err
		}
	}

	return f.collectImplicit(set, level, trail)
}

// include rebuilds the target's full descriptor and inserts it. Rediscovered
// modules are still rebuilt; the set collapses them by identity.
func (f *Factory) include(set *includeSet, target TypeRef, trail []TypeRef) error {
	if onTrail(trail, target) {
		return cycleError(trail, target)
	}
	d, err := f.assemble(target, append(trail, target))
	if err != nil {
		return err
	}
	set.add(d)
	return nil
}

// collectImplicit scans the level's own declared members for the contributes
// marker and pulls in the generated companion module named by the naming
// strategy. When the marker type is absent from the compilation the feature
// is unused and the step is a silent no-op.
func (f *Factory) collectImplicit(set *includeSet, level TypeRef, trail []TypeRef) error {
	if f.ContributesMarkerType == "" {
		return nil
	}
	if _, ok := f.Source.ResolveType(f.ContributesMarkerType); !ok {
		return nil
	}

	for _, m := range f.Source.Members(level) {
		if m.Promoted || !HasAnnotation(m.Annotations, AnnotContributes) {
			continue
		}
		name := f.Naming(m)
		target, ok := f.Source.ResolveType(name)
		if !ok {
			return fmt.Errorf("%w: generated module %s, contributed by %s.%s",
				ErrUnresolvedInclude, name, level, m.Name)
		}
		if err := f.include(set, target, trail); err != nil {
			return err
		}
	}
	return nil
}

// includeList reads the includes attribute off a module-level tag. Entries
// without a package qualifier are resolved in the declaring module's package.
func includeList(level TypeRef, tag Annotation) ([]string, error) {
	raw, ok := tag.Attrs["includes"]
	if !ok {
		return nil, nil
	}
	var names []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, fmt.Errorf("%w: empty includes entry on %s", ErrMalformedTag, level)
		}
		if !strings.Contains(entry, ".") {
			entry = level.PkgPath + "." + entry
		}
		names = append(names, entry)
	}
	return names, nil
}

func onTrail(trail []TypeRef, t TypeRef) bool {
	for _, ref := range trail {
		if ref == t {
			return true
		}
	}
	return false
}

// cycleError formats the inclusion trail from the first occurrence of the
// repeated module.
func cycleError(trail []TypeRef, repeat TypeRef) error {
	start := 0
	for i, ref := range trail {
		if ref == repeat {
			start = i
			break
		}
	}
	var steps []string
	for _, ref := range trail[start:] {
		steps = append(steps, ref.String())
	}
	steps = append(steps, repeat.String())
	return fmt.Errorf("%w: %s", ErrInclusionCycle, strings.Join(steps, " → "))
}
