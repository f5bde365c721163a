package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/bundlepipe/internal/pipeline"
)

// Module is the interface that all backend modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the backends registered for a single application instance.
type Registry struct {
	backends map[pipeline.Kind]pipeline.Backend
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		backends: make(map[pipeline.Kind]pipeline.Backend),
	}
}

// RegisterBackend registers the backend that runs kind. Registering a kind
// twice is a programming error and panics.
func (r *Registry) RegisterBackend(kind pipeline.Kind, backend pipeline.Backend) {
	if _, exists := r.backends[kind]; exists {
		panic(fmt.Sprintf("backend for pipeline '%s' already registered", kind))
	}
	slog.Debug("Registering backend.", "pipeline", kind.String())
	r.backends[kind] = backend
}

// Backend returns the backend registered for kind.
func (r *Registry) Backend(kind pipeline.Kind) (pipeline.Backend, bool) {
	b, ok := r.backends[kind]
	return b, ok
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.backends)
}
