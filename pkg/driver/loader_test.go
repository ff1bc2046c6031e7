package driver

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"javelin/interpreter-go/pkg/resolver"
)

func TestHomeHonoursEnvironment(t *testing.T) {
	t.Setenv(EnvHome, "/srv/javelin")
	be.Equal(t, Home(), "/srv/javelin")
}

func TestCheckoutDir(t *testing.T) {
	be.Equal(t, CheckoutDir("/h", "geo-lib", "feature/x"), filepath.Join("/h", "pkg", "src", "geo_lib", "feature_x"))
	be.Equal(t, SanitizePathSegment(" "), "head")
	be.Equal(t, SanitizePathSegment("v1.2.0-rc_1"), "v1.2.0-rc_1")
}

func TestLibraryDir(t *testing.T) {
	manifest := &Manifest{
		Path: "/work/app/javelin.yml",
		Libraries: map[string]*LibrarySpec{
			"geo":    {Path: "../geo"},
			"abs":    {Path: "/opt/abs"},
			"shapes": {Git: "https://example.com/shapes.git", Tag: "v1"},
		},
	}
	lock := NewLockfile("app", "javelin")

	dir, err := LibraryDir(manifest, lock, "/h", "geo")
	be.Err(t, err, nil)
	be.Equal(t, dir, filepath.Join("/work", "geo"))

	dir, err = LibraryDir(manifest, lock, "/h", "abs")
	be.Err(t, err, nil)
	be.Equal(t, dir, "/opt/abs")

	_, err = LibraryDir(manifest, lock, "/h", "shapes")
	be.Err(t, err, "run javelin deps")

	lock.Put(&LockedLibrary{Name: "shapes", Version: "v1"})
	dir, err = LibraryDir(manifest, lock, "/h", "shapes")
	be.Err(t, err, nil)
	be.Equal(t, dir, CheckoutDir("/h", "shapes", "v1"))

	_, err = LibraryDir(manifest, lock, "/h", "nope")
	be.Err(t, err, "not declared")
}

func TestLoadLibraries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "geo", ClassFileName), pointClasses)
	writeFile(t, filepath.Join(root, "app", ManifestFileName), "name: app\nlibraries:\n  geo: ../geo\n")

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	be.Err(t, err, nil)

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	lib := resolver.NewLibrary()
	be.Err(t, LoadLibraries(lib, manifest, nil, t.TempDir(), log), nil)

	_, ok := lib.ResolveClass("geo.Segment")
	be.True(t, ok)
	be.True(t, strings.Contains(logs.String(), "library loaded"))
	be.True(t, strings.Contains(logs.String(), "classes=3"))
}

func TestLoadLibrariesReportsBrokenDescriptors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "geo", ClassFileName), "classes:\n  - name: a.A\n    extends: Missing\n")
	writeFile(t, filepath.Join(root, ManifestFileName), "name: app\nlibraries:\n  geo: ./geo\n")

	manifest, err := LoadManifest(filepath.Join(root, ManifestFileName))
	be.Err(t, err, nil)
	err = LoadLibraries(resolver.NewLibrary(), manifest, nil, t.TempDir(), nil)
	be.Err(t, err, "library geo")
	be.Err(t, LoadLibraries(resolver.NewLibrary(), nil, nil, "", nil), nil)
}

func TestLoadLibrariesWarnsWhenClassesDriftFromLock(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "geo", ClassFileName), pointClasses)
	writeFile(t, filepath.Join(root, ManifestFileName), "name: app\nlibraries:\n  geo: ./geo\n")
	manifest, err := LoadManifest(filepath.Join(root, ManifestFileName))
	be.Err(t, err, nil)

	lock := NewLockfile("app", "javelin")
	lock.Put(&LockedLibrary{Name: "geo", Version: "path", Source: "path:./geo", Classes: []string{"geo.Point"}})

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	be.Err(t, LoadLibraries(resolver.NewLibrary(), manifest, lock, t.TempDir(), log), nil)
	be.True(t, strings.Contains(logs.String(), "level=WARN"))
	be.True(t, strings.Contains(logs.String(), "library=geo"))

	logs.Reset()
	lock.Put(&LockedLibrary{Name: "geo", Version: "path", Source: "path:./geo", Classes: []string{"geo.Point", "geo.Segment", "geo.OutOfBounds"}})
	be.Err(t, LoadLibraries(resolver.NewLibrary(), manifest, lock, t.TempDir(), log), nil)
	be.Equal(t, logs.String(), "")
}
