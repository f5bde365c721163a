package pipeline

import (
	"path"
	"path/filepath"
)

// Host supplies the values the engine editor would otherwise provide: the
// active build target and the default output and staging roots.
type Host interface {
	BuildTarget() string
	DefaultOutputRoot() string
	StreamingAssetsRoot() string
}

// ProjectHost derives host values from an engine project directory using the
// bundling framework's default layout.
type ProjectHost struct {
	ProjectDir string
	Target     string
	// YooFolder is the folder name under StreamingAssets. Empty means "yoo".
	YooFolder string
}

// BuildTarget implements Host.
func (h ProjectHost) BuildTarget() string { return h.Target }

// DefaultOutputRoot implements Host.
func (h ProjectHost) DefaultOutputRoot() string {
	return path.Join(filepath.ToSlash(h.ProjectDir), "Bundles")
}

// StreamingAssetsRoot implements Host.
func (h ProjectHost) StreamingAssetsRoot() string {
	folder := h.YooFolder
	if folder == "" {
		folder = "yoo"
	}
	return path.Join(filepath.ToSlash(h.ProjectDir), "Assets", "StreamingAssets", folder) + "/"
}
