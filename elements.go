package main

// TypeRef identifies a type in the loaded symbol table by package path and
// declared name. It is the module identity used for deduplication and caching.
type TypeRef struct {
	PkgPath string
	Name    string
}

func (t TypeRef) String() string {
	if t.PkgPath == "" {
		return t.Name
	}
	return t.PkgPath + "." + t.Name
}

// IsZero reports whether the reference is empty.
func (t TypeRef) IsZero() bool {
	return t.PkgPath == "" && t.Name == ""
}

// Member describes one member function visible on a module type.
type Member struct {
	Name        string
	Declaring   TypeRef // type that declares the method; differs from the module for promoted methods
	PkgPath     string  // package of the declaring type
	Promoted    bool    // reached through an embedded supertype
	Result      string  // declared result type, opaque binding-key material
	Position    string  // source location for diagnostics
	Annotations []Annotation
}

// TypeSource is the read-only introspection surface the assembly stage
// consumes. It is backed by the go/types symbol table in production
// (see SymbolTable) and by an in-memory fake in tests. Implementations must
// return members in a deterministic order.
type TypeSource interface {
	// KindTags returns the recognized module-level tags present on t,
	// in declaration order.
	KindTags(t TypeRef) []Annotation

	// Members returns all member functions visible on t, including those
	// promoted from embedded supertypes.
	Members(t TypeRef) []Member

	// Supertype returns the embedded supertype of t, if any.
	Supertype(t TypeRef) (TypeRef, bool)

	// ResolveType resolves a fully qualified type name. The second result is
	// false when the name does not correspond to a known type.
	ResolveType(name string) (TypeRef, bool)
}
