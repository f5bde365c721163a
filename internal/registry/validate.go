package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/pipeline"
)

// ValidateRegistry checks that every pipeline kind has a backend and that no
// backend is registered under an unknown kind.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range pipeline.Kinds() {
		if b, ok := r.backends[kind]; !ok || b == nil {
			errs = append(errs, fmt.Sprintf("pipeline '%s' has no registered backend", kind))
		}
	}
	for kind := range r.backends {
		if !kind.Valid() {
			errs = append(errs, fmt.Sprintf("backend registered for unknown pipeline '%s'", kind))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "backends", len(r.backends))
	return nil
}
