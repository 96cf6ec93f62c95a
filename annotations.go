package main

import (
	"go/ast"
	"strings"
)

// Annotation kinds
const (
	AnnotModule       = "module"       // //dimod:module [includes=A,B]
	AnnotProducer     = "producer"     // //dimod:producer [includes=A,B]
	AnnotProvides     = "provides"     // //dimod:provides
	AnnotProduces     = "produces"     // //dimod:produces
	AnnotBinds        = "binds"        // //dimod:binds
	AnnotMultibinds   = "multibinds"   // //dimod:multibinds
	AnnotOptional     = "optional"     // //dimod:optional
	AnnotSubcomponent = "subcomponent" // //dimod:subcomponent Name
	AnnotContributes  = "contributes"  // //dimod:contributes
)

// Annotation represents a parsed //dimod: directive.
type Annotation struct {
	Kind  string            // module, producer, provides, ...
	Value string            // positional argument (e.g., subcomponent name)
	Attrs map[string]string // key=value attributes (e.g., includes=A,B)
}

// ParseAnnotations extracts //dimod: directives from a doc comment group.
// Works for both type declarations and member functions.
func ParseAnnotations(doc *ast.CommentGroup) []Annotation {
	if doc == nil {
		return nil
	}

	var annotations []Annotation
	for _, comment := range doc.List {
		text := strings.TrimSpace(comment.Text)
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimSpace(text)

		if !strings.HasPrefix(text, "dimod:") {
			continue
		}
		text = strings.TrimPrefix(text, "dimod:")

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		kind := fields[0]

		switch kind {
		case AnnotModule, AnnotProducer, AnnotProvides, AnnotProduces,
			AnnotBinds, AnnotMultibinds, AnnotOptional,
			AnnotSubcomponent, AnnotContributes:
		default:
			continue
		}

		a := Annotation{Kind: kind}
		for _, arg := range fields[1:] {
			if eq := strings.Index(arg, "="); eq >= 0 {
				if a.Attrs == nil {
					a.Attrs = make(map[string]string)
				}
				a.Attrs[arg[:eq]] = arg[eq+1:]
				continue
			}
			if a.Value == "" {
				a.Value = arg
			}
		}
		annotations = append(annotations, a)
	}
	return annotations
}

// HasAnnotation checks if annotations contain a specific kind.
func HasAnnotation(annotations []Annotation, kind string) bool {
	for _, a := range annotations {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// FindAnnotation returns the first annotation of the given kind.
func FindAnnotation(annotations []Annotation, kind string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Kind == kind {
			return a, true
		}
	}
	return Annotation{}, false
}
