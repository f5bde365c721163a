package pipeline

import "context"

// BuildRequest is the fully resolved input of one build. It is built once
// per invocation and never modified afterwards.
type BuildRequest struct {
	Target         string
	OutputPath     string
	StagingPath    string
	PackageName    string
	PackageVersion string
	Mode           BuildMode
	FileNameStyle  FileNameStyle
	CopyOption     CopyOption

	// Compression is nil for kinds that do not compress bundles.
	Compression *CompressOption
}

// Parameters is the per-kind parameter set handed to a Backend. The concrete
// types are BuiltinParameters, ScriptableParameters and RawFileParameters.
type Parameters interface {
	Kind() Kind
	Common() CommonParameters
}

// CommonParameters holds the fields every pipeline needs.
type CommonParameters struct {
	BuildTarget           string
	BuildOutputRoot       string
	BuildinFileRoot       string
	BuildPipeline         string
	BuildMode             BuildMode
	PackageName           string
	PackageVersion        string
	FileNameStyle         FileNameStyle
	BuildinFileCopyOption CopyOption
}

// Common returns the shared part of a parameter set.
func (c CommonParameters) Common() CommonParameters { return c }

// BuiltinParameters configures the built-in compiled-bundle pipeline.
type BuiltinParameters struct {
	CommonParameters
	CompressOption CompressOption
}

// Kind implements Parameters.
func (BuiltinParameters) Kind() Kind { return Builtin }

// ScriptableParameters configures the scriptable pipeline.
type ScriptableParameters struct {
	CommonParameters
	CompressOption CompressOption
}

// Kind implements Parameters.
func (ScriptableParameters) Kind() Kind { return Scriptable }

// RawFileParameters configures the raw-file passthrough pipeline. It has no
// compression setting.
type RawFileParameters struct {
	CommonParameters
}

// Kind implements Parameters.
func (RawFileParameters) Kind() Kind { return RawFile }

// CompressionOf returns the compression carried by p, if any.
func CompressionOf(p Parameters) (CompressOption, bool) {
	switch v := p.(type) {
	case BuiltinParameters:
		return v.CompressOption, true
	case ScriptableParameters:
		return v.CompressOption, true
	default:
		return 0, false
	}
}

// BuildResult is what a backend reports after a run.
type BuildResult struct {
	Success    bool
	FailedTask string
	ErrorInfo  string
}

// Backend runs one build pipeline. A returned error means the backend could
// not run at all; build failures are reported through BuildResult.
type Backend interface {
	Run(ctx context.Context, params Parameters) (BuildResult, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, params Parameters) (BuildResult, error)

// Run implements Backend.
func (f BackendFunc) Run(ctx context.Context, params Parameters) (BuildResult, error) {
	return f(ctx, params)
}

// Artifact describes a package that was built successfully.
type Artifact struct {
	Kind        Kind
	PackageName string
	Version     string
	Target      string
	OutputPath  string
}
