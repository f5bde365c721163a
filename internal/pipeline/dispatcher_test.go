package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlepipe/internal/ctxlog"
)

// recordingBackend is a test double that records every invocation.
type recordingBackend struct {
	calls  []Parameters
	result BuildResult
	err    error
}

func (b *recordingBackend) Run(_ context.Context, params Parameters) (BuildResult, error) {
	b.calls = append(b.calls, params)
	return b.result, b.err
}

// backendMap is a BackendSet over a plain map.
type backendMap map[Kind]Backend

func (m backendMap) Backend(kind Kind) (Backend, bool) {
	b, ok := m[kind]
	return b, ok
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// newTestDispatcher wires the same recording backend for every kind.
func newTestDispatcher(backend *recordingBackend) *Dispatcher {
	set := backendMap{Builtin: backend, Scriptable: backend, RawFile: backend}
	return NewDispatcher(set, WithClock(fixedClock(time.Date(2025, time.January, 2, 3, 4, 5, 0, time.Local))))
}

func testContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestRunBuild_BuiltinDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: true}}
	d := newTestDispatcher(backend)
	src := MapSource{Args: map[string]string{ArgPkgName: "demo", ArgPkgVersion: "1.0.0"}}

	// --- Act ---
	artifact, err := d.RunBuild(testContext(&logs), src, testHost)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, backend.calls, 1)

	want := BuiltinParameters{
		CommonParameters: CommonParameters{
			BuildTarget:           "Android",
			BuildOutputRoot:       "/work/game/Bundles/",
			BuildinFileRoot:       "/work/game/Assets/StreamingAssets/yoo/",
			BuildPipeline:         "BuiltinBuildPipeline",
			BuildMode:             SimulateBuild,
			PackageName:           "demo",
			PackageVersion:        "1.0.0",
			FileNameStyle:         HashName,
			BuildinFileCopyOption: CopyNone,
		},
		CompressOption: LZ4,
	}
	if diff := cmp.Diff(Parameters(want), backend.calls[0]); diff != "" {
		t.Errorf("backend parameters mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, Artifact{
		Kind:        Builtin,
		PackageName: "demo",
		Version:     "1.0.0",
		Target:      "Android",
		OutputPath:  "/work/game/Bundles/",
	}, artifact)
	require.Contains(t, logs.String(), "Package demo build success.")
}

func TestRunBuild_MissingPackageNameSkipsBackend(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args map[string]string
	}{
		{name: "empty", args: map[string]string{ArgPkgName: ""}},
		{name: "absent", args: map[string]string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			var logs bytes.Buffer
			backend := &recordingBackend{result: BuildResult{Success: true}}
			d := newTestDispatcher(backend)
			src := MapSource{Args: tc.args, Vars: map[string]string{EnvBuildPipe: "1"}}

			// --- Act ---
			_, err := d.RunBuild(testContext(&logs), src, testHost)

			// --- Assert ---
			require.ErrorIs(t, err, ErrMissingPackageName)
			require.Empty(t, backend.calls, "no backend may run without a package name")
		})
	}
}

func TestRunBuild_RawFileHasNoCompression(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: true}}
	d := newTestDispatcher(backend)
	src := MapSource{
		Args: map[string]string{ArgPkgName: "demo"},
		Vars: map[string]string{EnvBuildPipe: "2"},
	}

	// --- Act ---
	artifact, err := d.RunBuild(testContext(&logs), src, testHost)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, RawFile, artifact.Kind)
	require.Len(t, backend.calls, 1)

	params, ok := backend.calls[0].(RawFileParameters)
	require.True(t, ok, "raw-file pipeline must receive RawFileParameters, got %T", backend.calls[0])
	require.Equal(t, "RawFileBuildPipeline", params.BuildPipeline)
	require.Equal(t, "2025-01-02-030405", params.PackageVersion)

	_, hasCompression := CompressionOf(backend.calls[0])
	require.False(t, hasCompression)
}

func TestRunBuild_BackendFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: false, FailedTask: "CopyBuildinFiles", ErrorInfo: "disk full"}}
	d := newTestDispatcher(backend)
	src := MapSource{Args: map[string]string{ArgPkgName: "demo"}}

	// --- Act ---
	_, err := d.RunBuild(testContext(&logs), src, testHost)

	// --- Assert ---
	var buildErr *BuildFailedError
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, "CopyBuildinFiles", buildErr.Task)
	require.Equal(t, "disk full", buildErr.Message)
	require.Equal(t, "build bundles failed. task:CopyBuildinFiles, error:disk full", err.Error())
	require.NotContains(t, logs.String(), "build success")
}

func TestRunBuild_ConfigurationErrorSkipsBackend(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: true}}
	d := newTestDispatcher(backend)
	src := MapSource{
		Args: map[string]string{ArgPkgName: "demo"},
		Vars: map[string]string{EnvBuildPipe: "9"},
	}

	_, err := d.RunBuild(testContext(&logs), src, testHost)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Empty(t, backend.calls)
}

func TestRunBuild_MissingPackageNameWinsOverMissingTarget(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: true}}
	d := newTestDispatcher(backend)
	host := ProjectHost{ProjectDir: "/work/game"}
	src := MapSource{Args: map[string]string{ArgPkgName: ""}}

	// --- Act ---
	_, err := d.RunBuild(testContext(&logs), src, host)

	// --- Assert ---
	require.ErrorIs(t, err, ErrMissingPackageName)
	var cfgErr *ConfigurationError
	require.False(t, errors.As(err, &cfgErr), "unexpected configuration error: %v", err)
	require.Empty(t, backend.calls)
	require.Contains(t, logs.String(), "Package name is required.")
}

func TestRunBuild_InfrastructureErrorIsWrapped(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	cause := errors.New("editor not found")
	backend := &recordingBackend{err: cause}
	d := newTestDispatcher(backend)

	_, err := d.RunBuild(testContext(&logs), MapSource{Args: map[string]string{ArgPkgName: "demo"}}, testHost)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "BuiltinBuildPipeline backend")
}

func TestDispatch_RoutesEachKindToItsBackend(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var logs bytes.Buffer
	backends := map[Kind]*recordingBackend{}
	set := backendMap{}
	for _, kind := range Kinds() {
		backends[kind] = &recordingBackend{result: BuildResult{Success: true}}
		set[kind] = backends[kind]
	}
	d := NewDispatcher(set)
	req := BuildRequest{Target: "Android", PackageName: "demo", PackageVersion: "1"}

	for _, kind := range Kinds() {
		// --- Act ---
		result, err := d.Dispatch(testContext(&logs), kind, req)

		// --- Assert ---
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Len(t, backends[kind].calls, 1, "backend for %s", kind)
		require.Equal(t, kind, backends[kind].calls[0].Kind())
	}
}

func TestDispatch_ReturnsResultUnmodified(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	want := BuildResult{Success: false, FailedTask: "TaskBuilding", ErrorInfo: "shader compile error"}
	d := newTestDispatcher(&recordingBackend{result: want})

	got, err := d.Dispatch(testContext(&logs), Scriptable, BuildRequest{PackageName: "demo"})

	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDispatch_UnsupportedKind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		kind Kind
		set  backendMap
	}{
		{name: "unknown kind", kind: Kind(3), set: backendMap{}},
		{name: "negative kind", kind: Kind(-1), set: backendMap{}},
		{name: "kind without backend", kind: Scriptable, set: backendMap{Builtin: &recordingBackend{}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			d := NewDispatcher(tc.set)

			_, err := d.Dispatch(testContext(&logs), tc.kind, BuildRequest{PackageName: "demo"})

			var unsupported *UnsupportedPipelineError
			require.ErrorAs(t, err, &unsupported)
			require.Equal(t, tc.kind, unsupported.Kind)
		})
	}
}

func TestDispatch_CompressionFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	backend := &recordingBackend{result: BuildResult{Success: true}}
	d := newTestDispatcher(backend)

	_, err := d.Dispatch(testContext(&logs), Scriptable, BuildRequest{PackageName: "demo"})

	require.NoError(t, err)
	compression, ok := CompressionOf(backend.calls[0])
	require.True(t, ok)
	require.Equal(t, DefaultCompression, compression)
}
