package main

import (
	"fmt"

	"github.com/rs/zerolog"
)

// BindingDeclaration is one classified member function. The Key field carries
// the binding-key material produced by the binding-construction collaborator;
// this stage only decides which bucket the member belongs to.
type BindingDeclaration struct {
	Member   string  // member function name
	Module   TypeRef // enclosing module
	Key      string
	Position string
}

// SubcomponentDeclaration is a subcomponent declared by a module. Extraction
// is delegated to a collaborator; descriptor assembly only plumbs the result
// through.
type SubcomponentDeclaration struct {
	Member string
	Module TypeRef
	Name   string
}

// ModuleDescriptor is the immutable result of assembling one module
// declaration: its kind, its binding declarations grouped by bucket, and the
// transitive set of modules it pulls in. Built once by Factory.Assemble and
// never mutated afterwards. Included descriptors are self-contained; there is
// no back-reference to the includer.
type ModuleDescriptor struct {
	Module TypeRef
	Kind   Kind

	// Bindings holds both provision and production entries, matching the
	// enclosing module's kind.
	Bindings         []BindingDeclaration
	Delegates        []BindingDeclaration
	Multibindings    []BindingDeclaration
	OptionalBindings []BindingDeclaration

	Subcomponents []SubcomponentDeclaration

	// Includes is deduplicated by module identity in first-discovery order:
	// ancestor-contributed inclusions, then declared includes, then implicit
	// includes. Downstream binding precedence depends on this order.
	Includes []*ModuleDescriptor
}

// Equal reports structural equality: module identity, kind, bucket contents
// and recursively equal includes. Two independent rebuilds of the same module
// over an unchanged symbol table compare equal.
func (d *ModuleDescriptor) Equal(o *ModuleDescriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Module != o.Module || d.Kind != o.Kind {
		return false
	}
	if !equalDeclarations(d.Bindings, o.Bindings) ||
		!equalDeclarations(d.Delegates, o.Delegates) ||
		!equalDeclarations(d.Multibindings, o.Multibindings) ||
		!equalDeclarations(d.OptionalBindings, o.OptionalBindings) {
		return false
	}
	if len(d.Subcomponents) != len(o.Subcomponents) {
		return false
	}
	for i := range d.Subcomponents {
		if d.Subcomponents[i] != o.Subcomponents[i] {
			return false
		}
	}
	if len(d.Includes) != len(o.Includes) {
		return false
	}
	for i := range d.Includes {
		if !d.Includes[i].Equal(o.Includes[i]) {
			return false
		}
	}
	return true
}

func equalDeclarations(a, b []BindingDeclaration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BindingFunc constructs the bucket entry for one matched member function.
type BindingFunc func(m Member, module TypeRef) (BindingDeclaration, error)

// SubcomponentsFunc extracts the subcomponent declarations of a module.
type SubcomponentsFunc func(ts TypeSource, module TypeRef) ([]SubcomponentDeclaration, error)

// Factory assembles module descriptors over a TypeSource. The binding
// collaborator fields default to declarations that capture the member, the
// enclosing module and the declared result type; callers with richer binding
// construction replace them.
type Factory struct {
	Source TypeSource
	Naming NamingStrategy

	// Binding-construction collaborators, one per recognized member tag.
	ForProvides   BindingFunc
	ForProduces   BindingFunc
	ForBinds      BindingFunc
	ForMultibinds BindingFunc
	ForOptional   BindingFunc

	Subcomponents SubcomponentsFunc

	// ContributesMarkerType names the marker type the companion generator
	// emits. When it does not resolve in the loaded packages the
	// implicit-inclusion step is skipped: the feature is unused in this build.
	ContributesMarkerType string

	log zerolog.Logger
}

// DefaultContributesMarkerType enables implicit inclusion for projects that
// import the marker package.
const DefaultContributesMarkerType = "github.com/leafdi/dimod/marker.Contributes"

// NewFactory creates a factory with the default collaborators.
func NewFactory(src TypeSource, log zerolog.Logger) *Factory {
	return &Factory{
		Source:                src,
		Naming:                DefaultNaming,
		ForProvides:           defaultBinding,
		ForProduces:           defaultBinding,
		ForBinds:              defaultBinding,
		ForMultibinds:         defaultBinding,
		ForOptional:           defaultBinding,
		Subcomponents:         extractSubcomponents,
		ContributesMarkerType: DefaultContributesMarkerType,
		log:                   log,
	}
}

func defaultBinding(m Member, module TypeRef) (BindingDeclaration, error) {
	return BindingDeclaration{
		Member:   m.Name,
		Module:   module,
		Key:      m.Result,
		Position: m.Position,
	}, nil
}

// extractSubcomponents is the default subcomponent collaborator: it reads
// //dimod:subcomponent declarations off the module's members.
func extractSubcomponents(ts TypeSource, module TypeRef) ([]SubcomponentDeclaration, error) {
	var decls []SubcomponentDeclaration
	for _, m := range ts.Members(module) {
		a, ok := FindAnnotation(m.Annotations, AnnotSubcomponent)
		if !ok {
			continue
		}
		if a.Value == "" {
			return nil, fmt.Errorf("%w: %s.%s subcomponent tag is missing a name (%s)",
				ErrMalformedTag, module, m.Name, m.Position)
		}
		decls = append(decls, SubcomponentDeclaration{
			Member: m.Name,
			Module: module,
			Name:   a.Value,
		})
	}
	return decls, nil
}

// Assemble builds the full descriptor for a module declaration: kind
// resolution gates everything, then member classification, then the recursive
// inclusion walk, then subcomponent extraction. Any failure aborts the whole
// call; there are no partial descriptors.
func (f *Factory) Assemble(module TypeRef) (*ModuleDescriptor, error) {
	return f.assemble(module, []TypeRef{module})
}

// assemble carries the active inclusion trail so cyclic inclusion graphs are
// reported instead of recursing forever.
func (f *Factory) assemble(module TypeRef, trail []TypeRef) (*ModuleDescriptor, error) {
	kind, _, err := ResolveKind(f.Source, module)
	if err != nil {
		return nil, err
	}
	f.log.Debug().Stringer("module", module).Stringer("kind", kind).Msg("assembling module")

	buckets, err := f.classify(module)
	if err != nil {
		return nil, err
	}

	includes, err := f.collectIncluded(module, trail)
	if err != nil {
		return nil, err
	}

	subs, err := f.Subcomponents(f.Source, module)
	if err != nil {
		return nil, err
	}

	return &ModuleDescriptor{
		Module:           module,
		Kind:             kind,
		Bindings:         buckets.bindings,
		Delegates:        buckets.delegates,
		Multibindings:    buckets.multibindings,
		OptionalBindings: buckets.optionals,
		Subcomponents:    subs,
		Includes:         includes,
	}, nil
}

type bucketSet struct {
	bindings      []BindingDeclaration
	delegates     []BindingDeclaration
	multibindings []BindingDeclaration
	optionals     []BindingDeclaration
}

// classify routes every member function visible on the module, including
// promoted ones, through an ordered dispatch table. Each tag is tested
// independently: a member carrying two recognized tags produces an entry in
// both buckets.
func (f *Factory) classify(module TypeRef) (bucketSet, error) {
	var out bucketSet
	table := []struct {
		tag    string
		build  BindingFunc
		bucket *[]BindingDeclaration
	}{
		{AnnotProvides, f.ForProvides, &out.bindings},
		{AnnotProduces, f.ForProduces, &out.bindings},
		{AnnotBinds, f.ForBinds, &out.delegates},
		{AnnotMultibinds, f.ForMultibinds, &out.multibindings},
		{AnnotOptional, f.ForOptional, &out.optionals},
	}

	for _, m := range f.Source.Members(module) {
		for _, entry := range table {
			if !HasAnnotation(m.Annotations, entry.tag) {
				continue
			}
			decl, err := entry.build(m, module)
			if err != nil {
				return bucketSet{}, fmt.Errorf("classify %s.%s: %w", module, m.Name, err)
			}
			*entry.bucket = append(*entry.bucket, decl)
		}
	}
	return out, nil
}
