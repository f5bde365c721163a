package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/bundlepipe/internal/app"
	"github.com/vk/bundlepipe/internal/pipeline"
)

// Exit codes used by the command.
const (
	ExitBuildFailed = 1
	ExitUsage       = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// buildArgs are the editor-style arguments forwarded to the build request.
var buildArgs = []struct {
	name  string
	usage string
}{
	{pipeline.ArgPkgName, "Name of the package to build. Overrides PACKAGE_NAMES."},
	{pipeline.ArgPkgVersion, "Package version. Defaults to the current time (yyyy-MM-dd-HHmmss)."},
	{pipeline.ArgCustomBuildPath, "Build output root. Defaults to <project>/Bundles."},
	{pipeline.ArgCustomBuildTarget, "Build target. Overrides BUILD_TARGET."},
	{pipeline.ArgCopyOption, "Built-in file copy option (0-4)."},
	{pipeline.ArgBuildMode, "Build mode (0-3). Defaults to 3 (simulate)."},
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bundlepipe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bundlepipe - Builds asset bundle packages through the engine editor.

Usage:
  bundlepipe [options] [CONFIG_PATH...]

Arguments:
  CONFIG_PATH
    Path to a .hcl file or a directory containing .hcl files. Repeatable;
    later files override earlier ones.

Options:
`)
		flagSet.PrintDefaults()
	}

	values := make(map[string]*string, len(buildArgs))
	for _, a := range buildArgs {
		values[a.name] = flagSet.String(a.name, "", a.usage)
	}

	var configPaths stringList
	flagSet.Var(&configPaths, "config", "Path to a configuration file or directory. Repeatable.")
	backendFlag := flagSet.String("backend", app.BackendUnity, "Backend that runs builds. Options: 'unity' or 'print'.")
	publishFlag := flagSet.Bool("publish", false, "Copy built bundles to BUNDLE_COPY_TO after every package succeeded.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFileFlag := flagSet.String("log-file", "", "Also write logs to this file.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	// Only arguments that were given are forwarded; an empty value is still
	// an explicit value.
	given := map[string]string{}
	flagSet.Visit(func(f *flag.Flag) {
		if v, ok := values[f.Name]; ok {
			given[f.Name] = *v
		}
	})

	paths := append([]string(configPaths), flagSet.Args()...)
	slog.Debug("Configuration paths determined.", "paths", paths)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Backend:     strings.ToLower(*backendFlag),
		Publish:     *publishFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		LogFile:     *logFileFlag,
		Args:        given,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// ExitCode maps an error returned by a build run to the process exit code.
// Configuration problems exit with ExitUsage, everything else with
// ExitBuildFailed.
func ExitCode(err error) int {
	var exitErr *ExitError
	var cfgErr *pipeline.ConfigurationError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &cfgErr),
		errors.Is(err, pipeline.ErrMissingPackageName),
		errors.Is(err, app.ErrLoadConfig):
		return ExitUsage
	default:
		return ExitBuildFailed
	}
}
