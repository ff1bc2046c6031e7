package driver

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestLockfileWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock := NewLockfile("demo-app", " javelin 0.1.0 ")
	lock.Put(&LockedLibrary{Name: "shapes", Version: "v1.2.0", Source: "git+https://example.com/shapes.git@abc", Checksum: "abc"})
	lock.Put(&LockedLibrary{Name: "geo", Version: "path", Source: "path:../geo", Classes: []string{"geo.Segment", "geo.Point"}})
	lock.Put(&LockedLibrary{Name: "shapes", Version: "v1.3.0", Source: " git+https://example.com/shapes.git@def ", Checksum: "def"})
	be.Equal(t, len(lock.Libraries), 2)
	be.Equal(t, lock.Libraries[0].Name, "geo")

	be.Err(t, WriteLockfile(lock, path), nil)
	data, err := os.ReadFile(path)
	be.Err(t, err, nil)
	lines := strings.Split(string(data), "\n")
	be.True(t, strings.HasPrefix(lines[2], "generated: "))
	be.True(t, strings.Contains(lines[2], lock.Generated.Format(time.RFC3339)))
	be.Equal(t, strings.Join(slices.Delete(lines, 2, 3), "\n"), `project: demo_app
tool: javelin 0.1.0
libraries:
  geo:
    version: path
    source: path:../geo
    classes: [geo.Point, geo.Segment]
  shapes:
    version: v1.3.0
    source: git+https://example.com/shapes.git@def
    checksum: def
`)

	loaded, err := LoadLockfile(path)
	be.Err(t, err, nil)
	be.Equal(t, loaded.Path, path)
	be.Equal(t, loaded.Project, "demo_app")
	be.Equal(t, loaded.Tool, "javelin 0.1.0")
	be.True(t, loaded.Generated.Equal(lock.Generated))
	be.Equal(t, len(loaded.Libraries), 2)

	shapes, ok := loaded.Find("shapes")
	be.True(t, ok)
	be.Equal(t, *shapes, LockedLibrary{Name: "shapes", Version: "v1.3.0", Source: "git+https://example.com/shapes.git@def", Checksum: "def"})

	_, ok = loaded.Find("missing")
	be.True(t, !ok)
}

func TestLockedLibraryClassesChanged(t *testing.T) {
	geo := &LockedLibrary{Name: "geo", Classes: []string{"geo.Point", "geo.Segment"}}
	be.True(t, !geo.ClassesChanged([]string{"geo.Segment", "geo.Point"}))
	be.True(t, geo.ClassesChanged([]string{"geo.Point"}))
	be.True(t, geo.ClassesChanged([]string{"geo.Point", "geo.Segment", "geo.Line"}))

	unrecorded := &LockedLibrary{Name: "old"}
	be.True(t, !unrecorded.ClassesChanged([]string{"a.A"}))
}

func TestLockfileErrors(t *testing.T) {
	be.Err(t, WriteLockfile(nil, "x"), "nil lockfile")
	be.Err(t, WriteLockfile(&Lockfile{}, ""), "missing path")

	dir := t.TempDir()
	_, err := LoadLockfile(filepath.Join(dir, LockfileName))
	be.Err(t, err, os.ErrNotExist)

	cases := map[string]string{
		"empty.lock":   "\n",
		"unknown.lock": "project: x\ngenerated: 2024-01-02T03:04:05Z\npackages: []\n",
		"badtime.lock": "project: x\ngenerated: yesterday\n",
	}
	wants := map[string]string{
		"empty.lock":   "is empty",
		"unknown.lock": "field packages not found",
		"badtime.lock": "generated",
	}
	for name, contents := range cases {
		path := filepath.Join(dir, name)
		writeFile(t, path, contents)
		_, err := LoadLockfile(path)
		be.Err(t, err, wants[name])
	}

	var nilLock *Lockfile
	_, ok := nilLock.Find("geo")
	be.True(t, !ok)
}
