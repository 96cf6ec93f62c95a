package main

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docGroup(lines ...string) *ast.CommentGroup {
	var comments []*ast.Comment
	for _, line := range lines {
		comments = append(comments, &ast.Comment{Text: line})
	}
	return &ast.CommentGroup{List: comments}
}

func TestParseAnnotations_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ParseAnnotations(nil))
}

func TestParseAnnotations_Directives(t *testing.T) {
	t.Parallel()

	annotations := ParseAnnotations(docGroup(
		"// CoreModule wires the core services.",
		"//dimod:module includes=AuthModule,storage.StorageModule",
		"// unrelated comment",
	))

	require.Len(t, annotations, 1)
	assert.Equal(t, AnnotModule, annotations[0].Kind)
	assert.Equal(t, "AuthModule,storage.StorageModule", annotations[0].Attrs["includes"])
}

func TestParseAnnotations_PositionalValue(t *testing.T) {
	t.Parallel()

	annotations := ParseAnnotations(docGroup("//dimod:subcomponent Settings"))
	require.Len(t, annotations, 1)
	assert.Equal(t, AnnotSubcomponent, annotations[0].Kind)
	assert.Equal(t, "Settings", annotations[0].Value)
}

func TestParseAnnotations_MultipleDirectives(t *testing.T) {
	t.Parallel()

	annotations := ParseAnnotations(docGroup(
		"//dimod:binds",
		"//dimod:multibinds",
	))
	require.Len(t, annotations, 2)
	assert.Equal(t, AnnotBinds, annotations[0].Kind)
	assert.Equal(t, AnnotMultibinds, annotations[1].Kind)
}

func TestParseAnnotations_UnknownKindSkipped(t *testing.T) {
	t.Parallel()

	annotations := ParseAnnotations(docGroup("//dimod:frobnicate now"))
	assert.Empty(t, annotations)
}

func TestParseAnnotations_SpacedCommentMarker(t *testing.T) {
	t.Parallel()

	annotations := ParseAnnotations(docGroup("//  dimod:provides"))
	require.Len(t, annotations, 1)
	assert.Equal(t, AnnotProvides, annotations[0].Kind)
}

func TestHasAndFindAnnotation(t *testing.T) {
	t.Parallel()

	set := []Annotation{{Kind: AnnotBinds}, {Kind: AnnotOptional, Value: "Tracer"}}

	assert.True(t, HasAnnotation(set, AnnotBinds))
	assert.False(t, HasAnnotation(set, AnnotProvides))

	a, ok := FindAnnotation(set, AnnotOptional)
	require.True(t, ok)
	assert.Equal(t, "Tracer", a.Value)

	_, ok = FindAnnotation(set, AnnotModule)
	assert.False(t, ok)
}
