// Package unity runs the bundling framework's pipelines by launching the
// engine editor in batch mode, one process per build.
package unity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/pipeline"
	"github.com/vk/bundlepipe/internal/registry"
)

// Settings keys read by the app to configure this module.
const (
	EnvExecutable    = "UNITY_EXECUTABLE"
	EnvExecuteMethod = "UNITY_EXECUTE_METHOD"
	EnvProjectDir    = "PROJ_DIR"
)

// Defaults used when the corresponding setting is absent.
const (
	DefaultExecutable    = "unity-editor"
	DefaultExecuteMethod = "BuildCommand.RunYooPipeline"
)

// editorFailedTask is reported when the editor fails without naming a task.
const editorFailedTask = "UnityEditor"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Executable is the editor command line. It may include a wrapper such
	// as xvfb-run; it is split on whitespace, honoring quotes.
	Executable    string
	ExecuteMethod string
	ProjectDir    string
	// Runner starts the editor process. Nil means ExecRunner.
	Runner Runner
}

// Register registers one backend per pipeline kind.
func (m *Module) Register(r *registry.Registry) {
	for _, kind := range pipeline.Kinds() {
		r.RegisterBackend(kind, &Backend{kind: kind, module: m})
	}
}

// Backend runs a single pipeline kind through the editor.
type Backend struct {
	kind   pipeline.Kind
	module *Module
}

// Run implements pipeline.Backend.
func (b *Backend) Run(ctx context.Context, params pipeline.Parameters) (pipeline.BuildResult, error) {
	if params.Kind() != b.kind {
		return pipeline.BuildResult{}, fmt.Errorf("%s backend received %s parameters", b.kind, params.Kind())
	}
	if b.module.ProjectDir == "" {
		return pipeline.BuildResult{}, errors.New("no engine project directory configured")
	}

	command := splitCommandLine(b.module.Executable)
	if len(command) == 0 {
		command = []string{DefaultExecutable}
	}
	args := append(command[1:], b.module.editorArgs(params)...)

	runner := b.module.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	logger := ctxlog.FromContext(ctx).With("backend", "unity", "pipeline", b.kind.String())
	logger.Info("Running editor.", "command", command[0], "args", strings.Join(args, " "))
	start := time.Now()

	var failure *pipeline.BuildResult
	exitCode, err := runner.Run(ctx, command[0], args, b.module.ProjectDir, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		logger.Info(line)
		if f, ok := parseFailure(line); ok {
			failure = &f
		}
	})
	if err != nil {
		return pipeline.BuildResult{}, err
	}
	logger.Info("Editor exited.", "exit_code", exitCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if exitCode == 0 {
		return pipeline.BuildResult{Success: true}, nil
	}
	if failure != nil {
		return *failure, nil
	}
	return pipeline.BuildResult{
		FailedTask: editorFailedTask,
		ErrorInfo:  fmt.Sprintf("exit status %d", exitCode),
	}, nil
}
