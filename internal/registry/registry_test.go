package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/bundlepipe/internal/pipeline"
)

func okBackend() pipeline.Backend {
	return pipeline.BackendFunc(func(context.Context, pipeline.Parameters) (pipeline.BuildResult, error) {
		return pipeline.BuildResult{Success: true}, nil
	})
}

type allKinds struct{}

func (allKinds) Register(r *Registry) {
	for _, kind := range pipeline.Kinds() {
		r.RegisterBackend(kind, okBackend())
	}
}

func TestValidateRegistry_AllKindsCovered(t *testing.T) {
	t.Parallel()

	reg := New()
	allKinds{}.Register(reg)

	require.NoError(t, reg.ValidateRegistry(context.Background()))
	require.Equal(t, len(pipeline.Kinds()), reg.Len())

	b, ok := reg.Backend(pipeline.RawFile)
	require.True(t, ok)
	require.NotNil(t, b)
}

func TestValidateRegistry_MissingKind(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := New()
	reg.RegisterBackend(pipeline.Builtin, okBackend())
	reg.RegisterBackend(pipeline.RawFile, okBackend())

	// --- Act ---
	err := reg.ValidateRegistry(context.Background())

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "pipeline 'ScriptableBuildPipeline' has no registered backend")
}

func TestValidateRegistry_UnknownKind(t *testing.T) {
	t.Parallel()

	reg := New()
	allKinds{}.Register(reg)
	reg.RegisterBackend(pipeline.Kind(9), okBackend())

	err := reg.ValidateRegistry(context.Background())

	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown pipeline 'Kind(9)'")
}

func TestRegisterBackend_DuplicatePanics(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.RegisterBackend(pipeline.Builtin, okBackend())

	require.PanicsWithValue(t, "backend for pipeline 'BuiltinBuildPipeline' already registered", func() {
		reg.RegisterBackend(pipeline.Builtin, okBackend())
	})
}
