package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/vk/bundlepipe/internal/config"
	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/notify"
	"github.com/vk/bundlepipe/internal/pipeline"
	"github.com/vk/bundlepipe/internal/publish"
	"github.com/vk/bundlepipe/internal/registry"
	"github.com/vk/bundlepipe/modules/unity"
)

// ErrLoadConfig wraps every failure to read the configuration files.
var ErrLoadConfig = errors.New("failed to load configuration")

// NotifierFactory opens the notifier for cfg.
type NotifierFactory func(ctx context.Context, cfg config.Notify) (notify.Notifier, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	logCloser  io.Closer
	config     *Config
	settings   *config.Settings
	registry   *registry.Registry
	dispatcher *pipeline.Dispatcher
	runID      string

	// Overridable collaborators.
	env         map[string]string
	goos        string
	workDir     string
	modules     []registry.Module
	clock       pipeline.Clock
	publisher   *publish.Publisher
	newNotifier NotifierFactory
}

// Option configures an App.
type Option func(*App)

// WithModules replaces the modules selected by Config.Backend.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) { a.modules = modules }
}

// WithEnv replaces the process environment snapshot.
func WithEnv(env map[string]string) Option {
	return func(a *App) { a.env = env }
}

// WithGOOS selects the platform section used for settings.
func WithGOOS(goos string) Option {
	return func(a *App) { a.goos = goos }
}

// WithWorkDir sets the directory used when no project directory is configured.
func WithWorkDir(dir string) Option {
	return func(a *App) { a.workDir = dir }
}

// WithClock replaces the clock used for generated package versions.
func WithClock(c pipeline.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithPublisher replaces the publisher used by Config.Publish.
func WithPublisher(p *publish.Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// WithNotifierFactory replaces how the notifier is opened.
func WithNotifierFactory(f NotifierFactory) Option {
	return func(a *App) { a.newNotifier = f }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(a *App) { a.runID = id }
}

// NewApp is the constructor for the main application. It loads
// configuration, registers the backend modules and validates the registry.
// Load failures are returned wrapped in ErrLoadConfig; an invalid registry is
// a programming error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	a := &App{
		outW:        outW,
		config:      appConfig,
		goos:        runtime.GOOS,
		newNotifier: dialNotifier,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.env == nil {
		a.env = config.EnvFromOS()
	}
	if a.runID == "" {
		a.runID = uuid.NewString()
	}

	logW := outW
	if appConfig.LogFile != "" {
		w, closer, err := openLogFile(appConfig.LogFile, outW)
		if err != nil {
			return nil, err
		}
		logW, a.logCloser = w, closer
	}
	a.logger = newLogger(appConfig.LogLevel, appConfig.LogFormat, logW).With("run_id", a.runID)
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	a.logger.Debug("Configuration loaded and translated into unified model.")

	a.settings = config.NewSettings(appConfig.Args, a.env, model, a.goos)

	if a.modules == nil {
		a.modules, err = backendModules(appConfig.Backend, a.settings, a.projectDir(a.settings), outW)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	reg := registry.New()
	for _, mod := range a.modules {
		mod.Register(reg)
	}
	a.logger.Debug("All Go modules registered.", "count", len(a.modules), "backend", appConfig.Backend)

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between compiled-in modules and pipeline kinds.
		panic(err)
	}
	a.registry = reg

	var dispatchOpts []pipeline.Option
	if a.clock != nil {
		dispatchOpts = append(dispatchOpts, pipeline.WithClock(a.clock))
	}
	a.dispatcher = pipeline.NewDispatcher(reg, dispatchOpts...)

	if a.publisher == nil {
		a.publisher = publish.NewOS()
	}
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID returns the identifier attached to every log line and event.
func (a *App) RunID() string {
	return a.runID
}

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

// projectDir returns the configured engine project, defaulting to the
// working directory.
func (a *App) projectDir(s *config.Settings) string {
	fallback := a.workDir
	if fallback == "" {
		fallback, _ = os.Getwd()
	}
	return s.Get(unity.EnvProjectDir, fallback)
}

func (a *App) hostFor(s *config.Settings) pipeline.Host {
	return pipeline.ProjectHost{
		ProjectDir: a.projectDir(s),
		Target:     s.Get(pipeline.EnvBuildTarget, ""),
	}
}

func dialNotifier(ctx context.Context, cfg config.Notify) (notify.Notifier, error) {
	return notify.Dial(ctx, cfg)
}
