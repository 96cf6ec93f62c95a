package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"
)

// Scanner loads the target module's packages and builds the symbol table the
// assembly stage reads.
type Scanner struct {
	cfg        *Config
	moduleRoot string
	ignore     []ExcludeRule
	log        zerolog.Logger
}

// NewScanner creates a scanner.
func NewScanner(cfg *Config, moduleRoot string, ignore []ExcludeRule, log zerolog.Logger) *Scanner {
	return &Scanner{cfg: cfg, moduleRoot: moduleRoot, ignore: ignore, log: log}
}

// SymbolTable is the go/types-backed TypeSource. It indexes every named
// struct type in the scanned packages plus the //dimod: directives on type
// and method declarations. Read-only once built.
type SymbolTable struct {
	fset     *token.FileSet
	named    map[TypeRef]*types.Named
	typeDocs map[TypeRef][]Annotation
	funcDocs map[funcKey][]Annotation
	modules  []TypeRef // annotated module declarations, sorted
}

type funcKey struct {
	recv TypeRef
	name string
}

// Scan loads packages and indexes declarations.
func (s *Scanner) Scan() (*SymbolTable, error) {
	patterns := s.buildPatterns()

	cfg := &packages.Config{
		Mode: packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedName |
			packages.NeedFiles | packages.NeedImports | packages.NeedDeps,
		Dir: s.moduleRoot,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(loadErrs, "\n  "))
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %v", patterns)
	}

	table := &SymbolTable{
		fset:     pkgs[0].Fset,
		named:    make(map[TypeRef]*types.Named),
		typeDocs: make(map[TypeRef][]Annotation),
		funcDocs: make(map[funcKey][]Annotation),
	}

	for _, pkg := range pkgs {
		if s.shouldExclude(pkg.PkgPath) {
			continue
		}
		s.indexPackage(table, pkg)
	}

	// The contributes marker may live outside the scanned module; register it
	// from imports so its presence toggles implicit inclusion.
	if s.cfg.Marker != "" {
		registerImportedType(table, pkgs, s.cfg.Marker)
	}

	sort.Slice(table.modules, func(i, j int) bool {
		return table.modules[i].String() < table.modules[j].String()
	})
	s.log.Debug().Int("types", len(table.named)).Int("modules", len(table.modules)).Msg("symbol table built")

	return table, nil
}

// buildPatterns converts scan config paths to Go package patterns.
func (s *Scanner) buildPatterns() []string {
	var patterns []string
	for _, scan := range s.cfg.Scan {
		p := strings.TrimPrefix(scan, "./")
		patterns = append(patterns, s.cfg.Module+"/"+p)
	}
	if len(patterns) == 0 {
		patterns = []string{s.cfg.Module + "/..."}
	}
	return patterns
}

// shouldExclude checks config excludes and ignore-file rules.
func (s *Scanner) shouldExclude(pkgPath string) bool {
	for _, exc := range s.cfg.Exclude {
		excPath := strings.TrimPrefix(exc, "./")
		excPath = strings.TrimSuffix(excPath, "/...")
		full := s.cfg.Module + "/" + excPath
		if strings.HasPrefix(pkgPath, full) {
			return true
		}
	}
	rel := strings.TrimPrefix(pkgPath, s.cfg.Module+"/")
	return IsExcluded(rel, s.ignore)
}

// indexPackage records every named struct type plus the annotations on type
// and method declarations.
func (s *Scanner) indexPackage(table *SymbolTable, pkg *packages.Package) {
	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					s.indexType(table, pkg, d, ts)
				}
			case *ast.FuncDecl:
				if d.Recv == nil {
					continue
				}
				recvName, ok := receiverTypeName(d)
				if !ok {
					continue
				}
				annotations := ParseAnnotations(d.Doc)
				if len(annotations) == 0 {
					continue
				}
				key := funcKey{
					recv: TypeRef{PkgPath: pkg.PkgPath, Name: recvName},
					name: d.Name.Name,
				}
				table.funcDocs[key] = annotations
			}
		}
	}
}

func (s *Scanner) indexType(table *SymbolTable, pkg *packages.Package, gen *ast.GenDecl, spec *ast.TypeSpec) {
	obj := pkg.Types.Scope().Lookup(spec.Name.Name)
	if obj == nil {
		return
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}
	if named.TypeParams() != nil && named.TypeParams().Len() > 0 {
		// Generic module types are out of scope.
		return
	}

	ref := TypeRef{PkgPath: pkg.PkgPath, Name: spec.Name.Name}
	table.named[ref] = named

	// Doc sits on the spec for grouped declarations, on the GenDecl otherwise.
	doc := spec.Doc
	if doc == nil {
		doc = gen.Doc
	}
	annotations := ParseAnnotations(doc)
	if len(annotations) == 0 {
		return
	}
	table.typeDocs[ref] = annotations

	if HasAnnotation(annotations, AnnotModule) || HasAnnotation(annotations, AnnotProducer) {
		table.modules = append(table.modules, ref)
		s.log.Debug().Stringer("module", ref).Msg("module declaration found")
	}
}

// registerImportedType indexes a fully qualified type from the scanned
// packages' imports. No-op when nothing imports it.
func registerImportedType(table *SymbolTable, pkgs []*packages.Package, name string) {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return
	}
	pkgPath, typeName := name[:dot], name[dot+1:]
	ref := TypeRef{PkgPath: pkgPath, Name: typeName}
	if _, ok := table.named[ref]; ok {
		return
	}
	for _, pkg := range pkgs {
		imp, ok := pkg.Imports[pkgPath]
		if !ok || imp.Types == nil {
			continue
		}
		obj := imp.Types.Scope().Lookup(typeName)
		if obj == nil {
			continue
		}
		if named, ok := obj.Type().(*types.Named); ok {
			table.named[ref] = named
		}
		return
	}
}

// receiverTypeName unwraps the receiver expression to the base type name.
func receiverTypeName(fn *ast.FuncDecl) (string, bool) {
	if len(fn.Recv.List) == 0 {
		return "", false
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return "", false
	}
	return ident.Name, true
}

// Modules returns all annotated module declarations, in deterministic order.
func (t *SymbolTable) Modules() []TypeRef {
	return t.modules
}

// KindTags implements TypeSource.
func (t *SymbolTable) KindTags(ref TypeRef) []Annotation {
	var tags []Annotation
	for _, a := range t.typeDocs[ref] {
		if a.Kind == AnnotModule || a.Kind == AnnotProducer {
			tags = append(tags, a)
		}
	}
	return tags
}

// Members implements TypeSource. The method set of *T includes methods
// promoted from embedded types, in go/types' name-sorted order, which keeps
// enumeration deterministic.
func (t *SymbolTable) Members(ref TypeRef) []Member {
	named, ok := t.named[ref]
	if !ok {
		return nil
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	members := make([]Member, 0, mset.Len())
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		declaring, ok := declaringType(fn)
		if !ok {
			continue
		}

		sig := fn.Type().(*types.Signature)
		result := ""
		if sig.Results().Len() > 0 {
			result = types.TypeString(sig.Results().At(0).Type(), nil)
		}

		members = append(members, Member{
			Name:        fn.Name(),
			Declaring:   declaring,
			PkgPath:     declaring.PkgPath,
			Promoted:    declaring != ref,
			Result:      result,
			Position:    t.fset.Position(fn.Pos()).String(),
			Annotations: t.funcDocs[funcKey{recv: declaring, name: fn.Name()}],
		})
	}
	return members
}

// Supertype implements TypeSource: the first embedded named struct type.
func (t *SymbolTable) Supertype(ref TypeRef) (TypeRef, bool) {
	named, ok := t.named[ref]
	if !ok {
		return TypeRef{}, false
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return TypeRef{}, false
	}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Embedded() {
			continue
		}
		ft := field.Type()
		if ptr, ok := ft.(*types.Pointer); ok {
			ft = ptr.Elem()
		}
		embedded, ok := ft.(*types.Named)
		if !ok {
			continue
		}
		if _, ok := embedded.Underlying().(*types.Struct); !ok {
			continue
		}
		obj := embedded.Obj()
		if obj.Pkg() == nil {
			continue
		}
		return TypeRef{PkgPath: obj.Pkg().Path(), Name: obj.Name()}, true
	}
	return TypeRef{}, false
}

// ResolveType implements TypeSource. Names are "pkgpath.TypeName".
func (t *SymbolTable) ResolveType(name string) (TypeRef, bool) {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return TypeRef{}, false
	}
	ref := TypeRef{PkgPath: name[:dot], Name: name[dot+1:]}
	_, ok := t.named[ref]
	return ref, ok
}

// declaringType extracts the receiver's named type.
func declaringType(fn *types.Func) (TypeRef, bool) {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return TypeRef{}, false
	}
	rt := sig.Recv().Type()
	if ptr, ok := rt.(*types.Pointer); ok {
		rt = ptr.Elem()
	}
	named, ok := rt.(*types.Named)
	if !ok {
		return TypeRef{}, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil {
		return TypeRef{}, false
	}
	return TypeRef{PkgPath: obj.Pkg().Path(), Name: obj.Name()}, true
}
