package main

import (
	"strings"

	"github.com/rs/zerolog"
)

// fakeSource is an in-memory TypeSource for unit tests.
type fakeSource struct {
	kindTags map[TypeRef][]Annotation
	members  map[TypeRef][]Member
	supers   map[TypeRef]TypeRef
	known    map[string]TypeRef
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		kindTags: make(map[TypeRef][]Annotation),
		members:  make(map[TypeRef][]Member),
		supers:   make(map[TypeRef]TypeRef),
		known:    make(map[string]TypeRef),
	}
}

// addType registers a plain type with no module tag.
func (f *fakeSource) addType(ref TypeRef) *fakeSource {
	f.known[ref.String()] = ref
	return f
}

// addModule registers a type carrying the given module-level tags.
func (f *fakeSource) addModule(ref TypeRef, tags ...Annotation) *fakeSource {
	f.addType(ref)
	f.kindTags[ref] = append(f.kindTags[ref], tags...)
	return f
}

func (f *fakeSource) addMember(ref TypeRef, m Member) *fakeSource {
	f.members[ref] = append(f.members[ref], m)
	return f
}

func (f *fakeSource) setSuper(child, parent TypeRef) *fakeSource {
	f.supers[child] = parent
	return f
}

func (f *fakeSource) KindTags(t TypeRef) []Annotation { return f.kindTags[t] }
func (f *fakeSource) Members(t TypeRef) []Member      { return f.members[t] }

func (f *fakeSource) Supertype(t TypeRef) (TypeRef, bool) {
	super, ok := f.supers[t]
	return super, ok
}

func (f *fakeSource) ResolveType(name string) (TypeRef, bool) {
	ref, ok := f.known[name]
	return ref, ok
}

func ref(pkg, name string) TypeRef {
	return TypeRef{PkgPath: pkg, Name: name}
}

func moduleTagWith(includes ...string) Annotation {
	a := Annotation{Kind: AnnotModule}
	if len(includes) > 0 {
		a.Attrs = map[string]string{"includes": strings.Join(includes, ",")}
	}
	return a
}

func producerTagWith(includes ...string) Annotation {
	a := Annotation{Kind: AnnotProducer}
	if len(includes) > 0 {
		a.Attrs = map[string]string{"includes": strings.Join(includes, ",")}
	}
	return a
}

// taggedMember builds a member declared directly on the given type.
func taggedMember(declaring TypeRef, name string, tags ...string) Member {
	m := Member{
		Name:      name,
		Declaring: declaring,
		PkgPath:   declaring.PkgPath,
		Result:    declaring.PkgPath + "." + upperCamel(name),
	}
	for _, tag := range tags {
		m.Annotations = append(m.Annotations, Annotation{Kind: tag})
	}
	return m
}

func testFactory(src TypeSource) *Factory {
	f := NewFactory(src, zerolog.Nop())
	// Implicit inclusion stays off unless a test registers a marker type.
	f.ContributesMarkerType = "fake/marker.Contributes"
	return f
}
