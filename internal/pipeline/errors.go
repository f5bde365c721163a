package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingPackageName is returned when a request has no package name.
var ErrMissingPackageName = errors.New("package name is required")

var errOutOfRange = errors.New("value does not map to a known option")

// ConfigurationError reports an option that is present but cannot be decoded.
type ConfigurationError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration for %s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("invalid configuration for %s=%q: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnsupportedPipelineError is returned when a kind reaches dispatch that no
// backend handles.
type UnsupportedPipelineError struct {
	Kind Kind
}

func (e *UnsupportedPipelineError) Error() string {
	return fmt.Sprintf("unsupported build pipe: %s", e.Kind)
}

// BuildFailedError carries the failing task and message reported by a backend.
type BuildFailedError struct {
	Task    string
	Message string
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build bundles failed. task:%s, error:%s", e.Task, e.Message)
}
