// Package publish moves finished bundles into the directory served to
// clients, keeping a timestamped backup of what was there before.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/vk/bundlepipe/internal/ctxlog"
	"github.com/vk/bundlepipe/internal/pipeline"
)

// EnvCopyTo names the setting holding the publish root.
const EnvCopyTo = "BUNDLE_COPY_TO"

// backupLayout is the timestamp appended to backup directory names.
const backupLayout = "06-01-02-150405"

// Publisher copies build output within a filesystem.
type Publisher struct {
	fs  billy.Filesystem
	now func() time.Time
	// abs maps a relative path to an absolute one. Nil leaves paths as given.
	abs func(string) (string, error)
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithNow replaces the clock used for backup names.
func WithNow(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New creates a Publisher over fs. Paths given to it are interpreted
// relative to the root of fs.
func New(fs billy.Filesystem, opts ...Option) *Publisher {
	p := &Publisher{fs: fs, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOS creates a Publisher over the host filesystem. Relative paths are
// resolved against the working directory.
func NewOS(opts ...Option) *Publisher {
	p := New(osfs.New(string(filepath.Separator)), opts...)
	p.abs = filepath.Abs
	return p
}

// Publish backs up the current contents of <copyTo>/cdn and then copies every
// artifact into it.
func (p *Publisher) Publish(ctx context.Context, copyTo string, artifacts []pipeline.Artifact) error {
	if copyTo == "" {
		return fmt.Errorf("%s is not set", EnvCopyTo)
	}
	if _, err := p.Backup(ctx, copyTo); err != nil {
		return err
	}
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.Copy(ctx, copyTo, a); err != nil {
			return err
		}
	}
	return nil
}

// Backup moves every directory under <copyTo>/cdn into
// <parent(copyTo)>/bak/bak_<timestamp>/. It returns the backup directory, or
// an empty string when there was nothing to back up.
func (p *Publisher) Backup(ctx context.Context, copyTo string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	copyTo, err := p.resolve(copyTo)
	if err != nil {
		return "", err
	}
	cdn := path.Join(copyTo, "cdn")

	entries, err := p.fs.ReadDir(cdn)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Nothing to back up.", "path", cdn)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", cdn, err)
	}

	dest := path.Join(path.Dir(copyTo), "bak", "bak_"+p.now().Format(backupLayout))
	if err := p.fs.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", dest, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		from := path.Join(cdn, e.Name())
		to := path.Join(dest, e.Name())
		if err := p.fs.Rename(from, to); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", from, err)
		}
		logger.Info("Backed up bundles.", "from", from, "to", to)
	}
	return dest, nil
}

// Copy copies the versioned output of a into <copyTo>/cdn/<target>/bundles,
// overwriting existing files. It returns the number of files copied.
func (p *Publisher) Copy(ctx context.Context, copyTo string, a pipeline.Artifact) (int, error) {
	copyTo, err := p.resolve(copyTo)
	if err != nil {
		return 0, err
	}
	if a.OutputPath, err = p.resolve(a.OutputPath); err != nil {
		return 0, err
	}
	src := SourceDir(a)
	dst := DestinationDir(copyTo, a.Target)

	info, err := p.fs.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read build output %s: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("build output %s is not a directory", src)
	}

	copied := 0
	err = util.Walk(p.fs, src, func(name string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(name), src), "/")
		target := path.Join(dst, rel)
		if fi.IsDir() {
			return p.fs.MkdirAll(target, 0o755)
		}
		data, err := util.ReadFile(p.fs, name)
		if err != nil {
			return err
		}
		if err := util.WriteFile(p.fs, target, data, fi.Mode().Perm()); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	ctxlog.FromContext(ctx).Info("Published bundles.", "package", a.PackageName, "from", src, "to", dst, "files", copied)
	return copied, nil
}

// SourceDir is where a build leaves the files of one package version.
func SourceDir(a pipeline.Artifact) string {
	return path.Join(clean(a.OutputPath), a.Target, a.PackageName, a.Version)
}

// DestinationDir is where files for target are published under copyTo.
func DestinationDir(copyTo, target string) string {
	return path.Join(clean(copyTo), "cdn", strings.ToLower(target), "bundles")
}

// resolve cleans name and, for the host filesystem, makes it absolute.
func (p *Publisher) resolve(name string) (string, error) {
	if p.abs == nil || name == "" {
		return clean(name), nil
	}
	abs, err := p.abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return clean(abs), nil
}

func clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
