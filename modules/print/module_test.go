package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlepipe/internal/pipeline"
	"github.com/vk/bundlepipe/internal/registry"
)

func TestModule_PrintsSortedParameters(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var out bytes.Buffer
	r := registry.New()
	(&Module{Out: &out}).Register(r)
	backend, ok := r.Backend(pipeline.RawFile)
	require.True(t, ok)

	params := pipeline.RawFileParameters{CommonParameters: pipeline.CommonParameters{
		BuildTarget:    "iOS",
		BuildPipeline:  pipeline.RawFile.String(),
		PackageName:    "RawPackage",
		PackageVersion: "v1",
	}}

	// --- Act ---
	result, err := backend.Run(context.Background(), params)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, result.Success)
	want := `      BuildMode = "ForceRebuild"
      BuildOutputRoot = ""
      BuildPipeline = "RawFileBuildPipeline"
      BuildTarget = "iOS"
      BuildinFileCopyOption = "None"
      BuildinFileRoot = ""
      FileNameStyle = "HashName"
      PackageName = "RawPackage"
      PackageVersion = "v1"
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_IncludesCompressionOnlyWhenCarried(t *testing.T) {
	t.Parallel()

	builtin := Values(pipeline.BuiltinParameters{CompressOption: pipeline.LZMA})
	raw := Values(pipeline.RawFileParameters{})

	assert.Equal(t, "LZMA", builtin["CompressOption"])
	assert.NotContains(t, raw, "CompressOption")
}

func TestModule_RegistersEveryKind(t *testing.T) {
	t.Parallel()

	r := registry.New()
	(&Module{}).Register(r)

	assert.Equal(t, len(pipeline.Kinds()), r.Len())
}
