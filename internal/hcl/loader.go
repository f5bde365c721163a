package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/bundlepipe/internal/config"
	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/fsutil"
	"github.com/vk/bundlepipe/internal/schema"
)

// Notification defaults applied when the notify block omits them.
const (
	DefaultNotifyNamespace = "/"
	DefaultNotifyEvent     = "bundle_build"
	DefaultNotifyTimeout   = 15 * time.Second
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates a loader whose expressions can read env through the
// `env` variable, e.g. `project_dir = "${env.HOME}/game"`.
func NewLoader(env map[string]string) *Loader {
	return &Loader{evalCtx: newEvalContext(env)}
}

// Load parses every path (file or directory of .hcl files) in order and
// merges them into one model. Later files override earlier ones key by key.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find configuration files in %s: %w", p, err)
		}
		if len(found) == 0 {
			logger.Warn("No .hcl files found in path", "path", p)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered HCL files.", "files", files)

	model := config.NewModel()
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		fileModel, err := l.decodeFile(hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Merge(fileModel)
		logger.Debug("Loaded configuration file.", "file", file)
	}

	logger.Debug("HCL loader finished.", "files", len(files), "packages", len(model.Packages))
	return model, nil
}

func (l *Loader) decodeFile(body hcl.Body) (*config.Model, error) {
	var root schema.File
	if diags := gohcl.DecodeBody(body, l.evalCtx, &root); diags.HasErrors() {
		return nil, diags
	}

	model := config.NewModel()
	var err error

	if root.CI != nil {
		if model.CI, err = l.translateSection(root.CI.Body); err != nil {
			return nil, fmt.Errorf("ci: %w", err)
		}
	}
	if root.Bundle != nil {
		if model.Bundle, err = l.translateSection(root.Bundle.Body); err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
	}
	for _, p := range root.Platforms {
		if model.Platforms[p.Name], err = l.translateSection(p.Body); err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.Name, err)
		}
	}
	for _, p := range root.Packages {
		if _, dup := model.Packages[p.Name]; dup {
			return nil, fmt.Errorf("package %q is declared more than once", p.Name)
		}
		if model.Packages[p.Name], err = l.translateSection(p.Body); err != nil {
			return nil, fmt.Errorf("package %q: %w", p.Name, err)
		}
	}
	if root.Notify != nil {
		if model.Notify, err = translateNotify(root.Notify); err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
	}
	return model, nil
}

func translateNotify(n *schema.Notify) (*config.Notify, error) {
	out := &config.Notify{
		URL:                n.URL,
		Namespace:          n.Namespace,
		Event:              n.Event,
		InsecureSkipVerify: n.InsecureSkipVerify,
		Timeout:            DefaultNotifyTimeout,
	}
	if out.URL == "" {
		return nil, fmt.Errorf("url must not be empty")
	}
	if out.Namespace == "" {
		out.Namespace = DefaultNotifyNamespace
	}
	if out.Event == "" {
		out.Event = DefaultNotifyEvent
	}
	if n.Timeout != "" {
		d, err := time.ParseDuration(n.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", n.Timeout, err)
		}
		out.Timeout = d
	}
	return out, nil
}
