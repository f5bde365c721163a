package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/bundlepipe/internal/ctxlog"
)

// BackendSet looks up the backend registered for a kind.
type BackendSet interface {
	Backend(kind Kind) (Backend, bool)
}

// Clock returns the current time. It exists so version fallback can be tested.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the clock used for generated package versions.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// Dispatcher routes build requests to backends.
type Dispatcher struct {
	backends BackendSet
	clock    Clock
}

// NewDispatcher creates a Dispatcher over the given backends.
func NewDispatcher(backends BackendSet, opts ...Option) *Dispatcher {
	d := &Dispatcher{backends: backends, clock: realClock{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BuildParameters builds the parameter set for kind from req. It fails for kinds
// outside the supported set.
func BuildParameters(kind Kind, req BuildRequest) (Parameters, error) {
	common := CommonParameters{
		BuildTarget:           req.Target,
		BuildOutputRoot:       req.OutputPath,
		BuildinFileRoot:       req.StagingPath,
		BuildPipeline:         kind.String(),
		BuildMode:             req.Mode,
		PackageName:           req.PackageName,
		PackageVersion:        req.PackageVersion,
		FileNameStyle:         req.FileNameStyle,
		BuildinFileCopyOption: req.CopyOption,
	}

	compression := DefaultCompression
	if req.Compression != nil {
		compression = *req.Compression
	}

	switch kind {
	case Builtin:
		return BuiltinParameters{CommonParameters: common, CompressOption: compression}, nil
	case Scriptable:
		return ScriptableParameters{CommonParameters: common, CompressOption: compression}, nil
	case RawFile:
		return RawFileParameters{CommonParameters: common}, nil
	default:
		return nil, &UnsupportedPipelineError{Kind: kind}
	}
}

// Dispatch invokes the backend for kind and returns its result unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, req BuildRequest) (BuildResult, error) {
	params, err := BuildParameters(kind, req)
	if err != nil {
		return BuildResult{}, err
	}
	backend, ok := d.backends.Backend(kind)
	if !ok || backend == nil {
		return BuildResult{}, &UnsupportedPipelineError{Kind: kind}
	}

	ctxlog.FromContext(ctx).Debug("Dispatching build.", "pipeline", kind.String(), "package", req.PackageName, "version", req.PackageVersion)
	result, err := backend.Run(ctx, params)
	if err != nil {
		return BuildResult{}, fmt.Errorf("%s backend: %w", kind, err)
	}
	return result, nil
}

// RunBuild resolves a request from src, validates it, dispatches it, and
// converts a failed result into a *BuildFailedError. No backend is invoked
// when resolution or validation fails; a missing package name takes
// precedence over malformed options.
func (d *Dispatcher) RunBuild(ctx context.Context, src Source, host Host) (Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	kind, req, err := ResolveRequest(src, host, d.clock.Now())
	// A missing package name is reported ahead of option errors.
	if verr := RequireValidRequest(req); verr != nil {
		logger.Error("Package name is required.")
		return Artifact{}, verr
	}
	if err != nil {
		return Artifact{}, err
	}

	logger.Info("Performing bundle build.",
		"pipeline", kind.String(),
		"package", req.PackageName,
		"version", req.PackageVersion,
		"target", req.Target,
		"output", req.OutputPath,
	)

	result, err := d.Dispatch(ctx, kind, req)
	if err != nil {
		return Artifact{}, err
	}
	if !result.Success {
		return Artifact{}, &BuildFailedError{Task: result.FailedTask, Message: result.ErrorInfo}
	}

	logger.Info(fmt.Sprintf("Package %s build success.", req.PackageName))
	return Artifact{
		Kind:        kind,
		PackageName: req.PackageName,
		Version:     req.PackageVersion,
		Target:      req.Target,
		OutputPath:  req.OutputPath,
	}, nil
}
