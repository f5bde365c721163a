package app

import (
	"fmt"
	"maps"
)

// Backend names accepted by Config.Backend.
const (
	BackendUnity = "unity"
	BackendPrint = "print"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are HCL files or directories, applied in order.
	ConfigPaths []string
	Backend     string
	// Publish copies the built bundles to BUNDLE_COPY_TO after every
	// package succeeded.
	Publish bool

	LogFormat string
	LogLevel  string
	// LogFile additionally receives every log line when set.
	LogFile string

	// Args are the editor-style build arguments given on the command line,
	// keyed by name without the leading dash. Only arguments that were
	// actually given are present.
	Args map[string]string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Backend {
	case "":
		cfg.Backend = BackendUnity
	case BackendUnity, BackendPrint:
	default:
		return nil, fmt.Errorf("unknown backend %q: must be %q or %q", cfg.Backend, BackendUnity, BackendPrint)
	}
	cfg.Args = maps.Clone(cfg.Args)
	if cfg.Args == nil {
		cfg.Args = map[string]string{}
	}
	return &cfg, nil
}
