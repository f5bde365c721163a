package publish

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlepipe/internal/pipeline"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 6, 22, 46, 41, 0, time.UTC) }

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func listFiles(t *testing.T, fs billy.Filesystem, root string) []string {
	t.Helper()
	var files []string
	err := util.Walk(fs, root, func(name string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			files = append(files, name)
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

var artifact = pipeline.Artifact{
	Kind:        pipeline.Builtin,
	PackageName: "DefaultPackage",
	Version:     "2025-01-06-224641",
	Target:      "Android",
	OutputPath:  "/proj/Bundles/",
}

func TestPaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/proj/Bundles/Android/DefaultPackage/2025-01-06-224641", SourceDir(artifact))
	assert.Equal(t, "/srv/www/cdn/android/bundles", DestinationDir("/srv/www/", "Android"))
}

func TestPublish_BacksUpAndCopies(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fs := memfs.New()
	writeFile(t, fs, "/srv/www/cdn/android/bundles/old.bundle", "old")
	writeFile(t, fs, "/srv/www/cdn/ios/bundles/old.bundle", "old-ios")
	writeFile(t, fs, "/srv/www/cdn/index.html", "keep")
	writeFile(t, fs, "/proj/Bundles/Android/DefaultPackage/2025-01-06-224641/a.bundle", "a")
	writeFile(t, fs, "/proj/Bundles/Android/DefaultPackage/2025-01-06-224641/sub/b.bundle", "b")
	writeFile(t, fs, "/proj/Bundles/Android/DefaultPackage/2025-01-06-224640/stale.bundle", "stale")
	p := New(fs, WithNow(fixedNow))

	// --- Act ---
	err := p.Publish(context.Background(), "/srv/www", []pipeline.Artifact{artifact})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/srv/bak/bak_25-01-06-224641/android/bundles/old.bundle",
		"/srv/bak/bak_25-01-06-224641/ios/bundles/old.bundle",
	}, listFiles(t, fs, "/srv/bak"))
	assert.Equal(t, []string{
		"/srv/www/cdn/android/bundles/a.bundle",
		"/srv/www/cdn/android/bundles/sub/b.bundle",
		"/srv/www/cdn/index.html",
	}, listFiles(t, fs, "/srv/www/cdn"))
	assert.Equal(t, "b", readFile(t, fs, "/srv/www/cdn/android/bundles/sub/b.bundle"))
}

func TestBackup_MissingCDNIsSkipped(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	p := New(fs, WithNow(fixedNow))

	dest, err := p.Backup(context.Background(), "/srv/www")

	require.NoError(t, err)
	assert.Empty(t, dest)
	_, err = fs.Stat("/srv/bak")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopy_OverwritesExistingFiles(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	writeFile(t, fs, "/srv/www/cdn/android/bundles/a.bundle", "previous")
	writeFile(t, fs, "/proj/Bundles/Android/DefaultPackage/2025-01-06-224641/a.bundle", "fresh")

	n, err := New(fs).Copy(context.Background(), "/srv/www", artifact)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "fresh", readFile(t, fs, "/srv/www/cdn/android/bundles/a.bundle"))
}

func TestCopy_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := New(memfs.New()).Copy(context.Background(), "/srv/www", artifact)

	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPublish_RequiresCopyTo(t *testing.T) {
	t.Parallel()

	err := New(memfs.New()).Publish(context.Background(), "", nil)

	require.ErrorContains(t, err, EnvCopyTo)
}

func TestNewOS_RelativePathsUseWorkingDirectory(t *testing.T) {
	// --- Arrange ---
	wd := t.TempDir()
	t.Chdir(wd)
	for name, content := range map[string]string{
		"Bundles/Android/demo/1.0/a.bundle":  "a",
		"pub/cdn/android/bundles/old.bundle": "old",
	} {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(wd, name)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(wd, name), []byte(content), 0o644))
	}
	a := pipeline.Artifact{OutputPath: "Bundles/", Target: "Android", PackageName: "demo", Version: "1.0"}

	// --- Act ---
	err := NewOS(WithNow(fixedNow)).Publish(context.Background(), "pub", []pipeline.Artifact{a})

	// --- Assert ---
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(wd, "pub", "cdn", "android", "bundles", "a.bundle"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	data, err = os.ReadFile(filepath.Join(wd, "bak", "bak_25-01-06-224641", "android", "bundles", "old.bundle"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
