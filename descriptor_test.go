package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_ClassifiesEveryTaggedMember(t *testing.T) {
	t.Parallel()

	m := ref("app", "CoreModule")
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, taggedMember(m, "provideClock", AnnotProvides)).
		addMember(m, taggedMember(m, "produceFeed", AnnotProduces)).
		addMember(m, taggedMember(m, "bindStore", AnnotBinds)).
		addMember(m, taggedMember(m, "declareHandlers", AnnotMultibinds)).
		addMember(m, taggedMember(m, "optionalTracer", AnnotOptional)).
		addMember(m, taggedMember(m, "helper")) // untagged, ignored

	d, err := testFactory(src).Assemble(m)
	require.NoError(t, err)

	assert.Equal(t, KindModule, d.Kind)
	require.Len(t, d.Bindings, 2) // provision and production entries share a bucket
	assert.Equal(t, "provideClock", d.Bindings[0].Member)
	assert.Equal(t, "produceFeed", d.Bindings[1].Member)
	require.Len(t, d.Delegates, 1)
	assert.Equal(t, "bindStore", d.Delegates[0].Member)
	require.Len(t, d.Multibindings, 1)
	assert.Equal(t, "declareHandlers", d.Multibindings[0].Member)
	require.Len(t, d.OptionalBindings, 1)
	assert.Equal(t, "optionalTracer", d.OptionalBindings[0].Member)
}

func TestAssemble_MemberWithTwoTagsLandsInBothBuckets(t *testing.T) {
	t.Parallel()

	m := ref("app", "CoreModule")
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, taggedMember(m, "bindAll", AnnotBinds, AnnotMultibinds))

	d, err := testFactory(src).Assemble(m)
	require.NoError(t, err)

	require.Len(t, d.Delegates, 1)
	require.Len(t, d.Multibindings, 1)
	assert.Equal(t, "bindAll", d.Delegates[0].Member)
	assert.Equal(t, "bindAll", d.Multibindings[0].Member)
}

func TestAssemble_BindingKeyAndModuleRecorded(t *testing.T) {
	t.Parallel()

	m := ref("app", "CoreModule")
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, taggedMember(m, "provideClock", AnnotProvides))

	d, err := testFactory(src).Assemble(m)
	require.NoError(t, err)

	require.Len(t, d.Bindings, 1)
	assert.Equal(t, m, d.Bindings[0].Module)
	assert.Equal(t, "app.ProvideClock", d.Bindings[0].Key)
}

func TestAssemble_KindConflictFailsWholeAssembly(t *testing.T) {
	t.Parallel()

	m := ref("app", "Confused")
	src := newFakeSource().
		addModule(m, moduleTagWith(), producerTagWith()).
		addMember(m, taggedMember(m, "provideClock", AnnotProvides))

	d, err := testFactory(src).Assemble(m)
	require.ErrorIs(t, err, ErrKindConflict)
	assert.Nil(t, d)
}

func TestAssemble_CollaboratorFailurePropagates(t *testing.T) {
	t.Parallel()

	m := ref("app", "CoreModule")
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, taggedMember(m, "bindStore", AnnotBinds))

	boom := errors.New("bad binding")
	f := testFactory(src)
	f.ForBinds = func(Member, TypeRef) (BindingDeclaration, error) { return BindingDeclaration{}, boom }

	_, err := f.Assemble(m)
	require.ErrorIs(t, err, boom)
}

func TestAssemble_SubcomponentsPlumbedThrough(t *testing.T) {
	t.Parallel()

	m := ref("app", "UIModule")
	sub := taggedMember(m, "settingsScreen")
	sub.Annotations = append(sub.Annotations, Annotation{Kind: AnnotSubcomponent, Value: "Settings"})
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, sub)

	d, err := testFactory(src).Assemble(m)
	require.NoError(t, err)

	require.Len(t, d.Subcomponents, 1)
	assert.Equal(t, SubcomponentDeclaration{Member: "settingsScreen", Module: m, Name: "Settings"}, d.Subcomponents[0])
}

func TestAssemble_SubcomponentWithoutNameIsMalformed(t *testing.T) {
	t.Parallel()

	m := ref("app", "UIModule")
	sub := taggedMember(m, "settingsScreen")
	sub.Annotations = append(sub.Annotations, Annotation{Kind: AnnotSubcomponent})
	src := newFakeSource().
		addModule(m, moduleTagWith()).
		addMember(m, sub)

	_, err := testFactory(src).Assemble(m)
	require.ErrorIs(t, err, ErrMalformedTag)
}

func TestAssemble_Idempotent(t *testing.T) {
	t.Parallel()

	a := ref("app", "AuthModule")
	m := ref("app", "CoreModule")
	src := newFakeSource().
		addModule(a, moduleTagWith()).
		addModule(m, moduleTagWith("app.AuthModule")).
		addMember(m, taggedMember(m, "provideClock", AnnotProvides))

	f := testFactory(src)
	first, err := f.Assemble(m)
	require.NoError(t, err)
	second, err := f.Assemble(m)
	require.NoError(t, err)

	assert.NotSame(t, first, second) // rebuilt, not memoized
	assert.True(t, first.Equal(second))
}

func TestDescriptorEqual_Mismatches(t *testing.T) {
	t.Parallel()

	m := ref("app", "CoreModule")
	base := &ModuleDescriptor{Module: m, Kind: KindModule}

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.False(t, base.Equal(nil))
		var null *ModuleDescriptor
		assert.True(t, null.Equal(nil))
	})

	t.Run("kind", func(t *testing.T) {
		t.Parallel()
		other := &ModuleDescriptor{Module: m, Kind: KindProducer}
		assert.False(t, base.Equal(other))
	})

	t.Run("bindings", func(t *testing.T) {
		t.Parallel()
		other := &ModuleDescriptor{Module: m, Kind: KindModule,
			Bindings: []BindingDeclaration{{Member: "provideClock", Module: m}}}
		assert.False(t, base.Equal(other))
	})

	t.Run("includes", func(t *testing.T) {
		t.Parallel()
		other := &ModuleDescriptor{Module: m, Kind: KindModule,
			Includes: []*ModuleDescriptor{{Module: ref("app", "AuthModule"), Kind: KindModule}}}
		assert.False(t, base.Equal(other))
	})
}
