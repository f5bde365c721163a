// Package print provides a backend that reports the parameters it receives
// instead of building anything. It is useful for checking configuration.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/pipeline"
	"github.com/vk/bundlepipe/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed parameters. Nil means stdout.
	Out io.Writer

	mu sync.Mutex
}

// Register registers the same backend for every pipeline kind.
func (m *Module) Register(r *registry.Registry) {
	for _, kind := range pipeline.Kinds() {
		r.RegisterBackend(kind, pipeline.BackendFunc(m.run))
	}
}

func (m *Module) run(ctx context.Context, params pipeline.Parameters) (pipeline.BuildResult, error) {
	ctxlog.FromContext(ctx).Info("Printing build parameters", "pipeline", params.Kind().String())

	values := Values(params)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "      %s = %q\n", k, values[k]); err != nil {
			return pipeline.BuildResult{}, fmt.Errorf("failed to print parameters: %w", err)
		}
	}
	return pipeline.BuildResult{Success: true}, nil
}

// Values flattens params into the names the editor-side command reads.
func Values(params pipeline.Parameters) map[string]string {
	c := params.Common()
	v := map[string]string{
		"BuildTarget":           c.BuildTarget,
		"BuildOutputRoot":       c.BuildOutputRoot,
		"BuildinFileRoot":       c.BuildinFileRoot,
		"BuildPipeline":         c.BuildPipeline,
		"BuildMode":             c.BuildMode.String(),
		"PackageName":           c.PackageName,
		"PackageVersion":        c.PackageVersion,
		"FileNameStyle":         c.FileNameStyle.String(),
		"BuildinFileCopyOption": c.BuildinFileCopyOption.String(),
	}
	if compression, ok := pipeline.CompressionOf(params); ok {
		v["CompressOption"] = compression.String()
	}
	return v
}
