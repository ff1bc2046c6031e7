package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName sits next to the manifest.
const LockfileName = "javelin.lock"

// Lockfile pins the libraries of a project to the exact sources that
// javelin deps resolved.
type Lockfile struct {
	Path      string
	Project   string
	Tool      string
	Generated time.Time
	// Libraries is kept sorted by name.
	Libraries []*LockedLibrary
}

// LockedLibrary is one resolved library: the checkout version, where it came
// from, a digest of its files and the classes its descriptor declared.
type LockedLibrary struct {
	Name     string
	Version  string
	Source   string
	Checksum string
	Classes  []string
}

// NewLockfile starts an empty lockfile for project.
func NewLockfile(project, tool string) *Lockfile {
	return &Lockfile{
		Project:   sanitizeSegment(project),
		Tool:      strings.TrimSpace(tool),
		Generated: time.Now().UTC().Truncate(time.Second),
	}
}

// LockfilePath returns where the lockfile of manifest lives.
func LockfilePath(manifest *Manifest) string {
	return filepath.Join(manifest.Dir(), LockfileName)
}

// lockDoc is the on-disk form. Libraries are a mapping so the file reads
// like the manifest's libraries section.
type lockDoc struct {
	Project   string                 `yaml:"project"`
	Tool      string                 `yaml:"tool,omitempty"`
	Generated string                 `yaml:"generated"`
	Libraries map[string]lockedEntry `yaml:"libraries,omitempty"`
}

type lockedEntry struct {
	Version  string   `yaml:"version"`
	Source   string   `yaml:"source"`
	Checksum string   `yaml:"checksum,omitempty"`
	Classes  []string `yaml:"classes,omitempty,flow"`
}

// LoadLockfile reads javelin.lock at path.
func LoadLockfile(path string) (*Lockfile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("lockfile: %s is empty", abs)
	}

	var doc lockDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	generated, err := time.Parse(time.RFC3339, strings.TrimSpace(doc.Generated))
	if err != nil {
		return nil, fmt.Errorf("lockfile: %s: generated: %w", abs, err)
	}

	lock := &Lockfile{
		Path:      abs,
		Project:   sanitizeSegment(doc.Project),
		Tool:      strings.TrimSpace(doc.Tool),
		Generated: generated,
	}
	for name, entry := range doc.Libraries {
		lock.Put(&LockedLibrary{
			Name:     name,
			Version:  entry.Version,
			Source:   entry.Source,
			Checksum: entry.Checksum,
			Classes:  entry.Classes,
		})
	}
	return lock, nil
}

// WriteLockfile stores lock at path, or at lock.Path when path is empty,
// stamping the generation time.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return errors.New("lockfile: nil lockfile")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return errors.New("lockfile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	lock.Path = abs
	lock.Generated = time.Now().UTC().Truncate(time.Second)

	doc := lockDoc{
		Project:   lock.Project,
		Tool:      lock.Tool,
		Generated: lock.Generated.Format(time.RFC3339),
	}
	if len(lock.Libraries) > 0 {
		doc.Libraries = make(map[string]lockedEntry, len(lock.Libraries))
	}
	for _, lib := range lock.Libraries {
		doc.Libraries[lib.Name] = lockedEntry{
			Version:  lib.Version,
			Source:   lib.Source,
			Checksum: lib.Checksum,
			Classes:  lib.Classes,
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("lockfile: encode %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encode %s: %w", abs, err)
	}
	return os.WriteFile(abs, buf.Bytes(), 0o644)
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) (*LockedLibrary, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	idx, ok := l.search(name)
	if !ok {
		return nil, false
	}
	return l.Libraries[idx], true
}

// Put adds lib, replacing any entry of the same name. Fields are trimmed and
// the class list sorted.
func (l *Lockfile) Put(lib *LockedLibrary) {
	lib.Name = sanitizeSegment(lib.Name)
	lib.Version = strings.TrimSpace(lib.Version)
	lib.Source = strings.TrimSpace(lib.Source)
	lib.Checksum = strings.TrimSpace(lib.Checksum)
	slices.Sort(lib.Classes)

	idx, ok := l.search(lib.Name)
	if ok {
		l.Libraries[idx] = lib
		return
	}
	l.Libraries = slices.Insert(l.Libraries, idx, lib)
}

func (l *Lockfile) search(name string) (int, bool) {
	return slices.BinarySearchFunc(l.Libraries, name, func(lib *LockedLibrary, target string) int {
		return strings.Compare(lib.Name, target)
	})
}

// ClassesChanged reports whether declared differs from the classes recorded
// when the library was locked. An entry without recorded classes never
// reports a change.
func (lib *LockedLibrary) ClassesChanged(declared []string) bool {
	if lib == nil || len(lib.Classes) == 0 {
		return false
	}
	sorted := slices.Sorted(slices.Values(declared))
	return !slices.Equal(lib.Classes, sorted)
}
