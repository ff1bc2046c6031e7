package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	writeFile(t, path, `name: demo-app
version: 0.1.0
main: src/main.java
libraries:
  geo: ../geo
  shapes:
    git: https://example.com/shapes.git
    tag: v1.2.0
options:
  max_call_depth: 512
  log_level: debug
  log_format: json
`)

	manifest, err := LoadManifest(path)
	be.Err(t, err, nil)
	be.Equal(t, manifest.Name, "demo_app")
	be.Equal(t, manifest.Version, "0.1.0")
	be.Equal(t, manifest.MainPath(), filepath.Join(dir, "src", "main.java"))
	be.Equal(t, manifest.LibraryNames(), []string{"geo", "shapes"})
	be.Equal(t, *manifest.Libraries["geo"], LibrarySpec{Path: "../geo"})
	be.Equal(t, *manifest.Libraries["shapes"], LibrarySpec{Git: "https://example.com/shapes.git", Tag: "v1.2.0"})
	be.Equal(t, manifest.Options, RunOptions{MaxCallDepth: 512, LogLevel: "debug", LogFormat: "json"})
}

func TestLoadManifestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	writeFile(t, path, `version: 1.0.0
libraries:
  both:
    path: ./both
    git: https://example.com/both.git
  unpinned:
    git: https://example.com/unpinned.git
  pinnedpath:
    path: ./lib
    rev: abc123
options:
  max_call_depth: -1
  log_format: xml
`)

	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	be.Equal(t, verr.Issues, []string{
		"name must be provided",
		"options.max_call_depth must not be negative",
		`options.log_format "xml" must be text or json`,
		"libraries.both: path libraries cannot also specify git",
		"libraries.both: git libraries require exactly one of rev, tag or branch",
		"libraries.pinnedpath: path libraries cannot pin a revision",
		"libraries.unpinned: git libraries require exactly one of rev, tag or branch",
	})
}

func TestLoadManifestRejectsUnknownKeysAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yml")
	writeFile(t, unknown, "name: demo\nmian: main.java\n")
	_, err := LoadManifest(unknown)
	be.Err(t, err, "field mian not found")

	empty := filepath.Join(dir, "empty.yml")
	writeFile(t, empty, "")
	_, err = LoadManifest(empty)
	be.Err(t, err, "is empty")
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ManifestFileName)
	writeFile(t, path, "name: demo\n")
	nested := filepath.Join(root, "src", "deep")
	be.Err(t, os.MkdirAll(nested, 0o755), nil)

	found, err := FindManifest(nested)
	be.Err(t, err, nil)
	be.Equal(t, found, path)
}

func TestFindManifestNotFound(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	be.Err(t, err, ErrManifestNotFound)
}
