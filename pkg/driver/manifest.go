package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project file searched for by FindManifest.
const ManifestFileName = "javelin.yml"

// ErrManifestNotFound is returned by FindManifest when no manifest exists
// in the directory or any of its parents.
var ErrManifestNotFound = errors.New("manifest: javelin.yml not found")

// Manifest represents the parsed contents of javelin.yml.
type Manifest struct {
	Path      string
	Name      string
	Version   string
	Main      string
	Libraries map[string]*LibrarySpec
	Options   RunOptions
}

// LibrarySpec locates a class library: a local directory or a git repository
// pinned by rev, tag or branch.
type LibrarySpec struct {
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// RunOptions are the interpreter settings a project may fix.
type RunOptions struct {
	MaxCallDepth int
	LogLevel     string
	LogFormat    string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// FindManifest walks from dir towards the filesystem root looking for javelin.yml.
func FindManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrManifestNotFound
		}
		abs = parent
	}
}

// LoadManifest parses javelin.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Dir returns the directory holding the manifest.
func (m *Manifest) Dir() string {
	if m == nil || m.Path == "" {
		return "."
	}
	return filepath.Dir(m.Path)
}

// MainPath resolves the entry source relative to the manifest.
func (m *Manifest) MainPath() string {
	if m == nil || m.Main == "" {
		return ""
	}
	if filepath.IsAbs(m.Main) {
		return m.Main
	}
	return filepath.Join(m.Dir(), m.Main)
}

// LibraryNames lists the declared libraries in a stable order.
func (m *Manifest) LibraryNames() []string {
	names := make([]string, 0, len(m.Libraries))
	for name := range m.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Options.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "options.max_call_depth must not be negative")
	}
	switch m.Options.LogFormat {
	case "", "text", "json":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("options.log_format %q must be text or json", m.Options.LogFormat))
	}
	for _, name := range m.LibraryNames() {
		for _, issue := range m.Libraries[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("libraries.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (l *LibrarySpec) validate() []string {
	if l == nil {
		return []string{"must specify path or git"}
	}
	var errs []string
	switch {
	case l.Path != "" && l.Git != "":
		errs = append(errs, "path libraries cannot also specify git")
	case l.Path == "" && l.Git == "":
		errs = append(errs, "must specify path or git")
	}
	pins := 0
	for _, pin := range []string{l.Rev, l.Tag, l.Branch} {
		if pin != "" {
			pins++
		}
	}
	if l.Git != "" && pins != 1 {
		errs = append(errs, "git libraries require exactly one of rev, tag or branch")
	}
	if l.Path != "" && pins > 0 {
		errs = append(errs, "path libraries cannot pin a revision")
	}
	return errs
}

type manifestFile struct {
	Name      string                  `yaml:"name"`
	Version   string                  `yaml:"version"`
	Main      string                  `yaml:"main"`
	Libraries map[string]*LibrarySpec `yaml:"libraries"`
	Options   optionsYAML             `yaml:"options"`
}

type optionsYAML struct {
	MaxCallDepth int    `yaml:"max_call_depth"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// UnmarshalYAML accepts a bare string as shorthand for a path library.
func (l *LibrarySpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&l.Path)
	}
	var raw struct {
		Path   string `yaml:"path"`
		Git    string `yaml:"git"`
		Rev    string `yaml:"rev"`
		Tag    string `yaml:"tag"`
		Branch string `yaml:"branch"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*l = LibrarySpec(raw)
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:      path,
		Name:      sanitizeSegment(mf.Name),
		Version:   strings.TrimSpace(mf.Version),
		Main:      strings.TrimSpace(mf.Main),
		Libraries: make(map[string]*LibrarySpec, len(mf.Libraries)),
		Options: RunOptions{
			MaxCallDepth: mf.Options.MaxCallDepth,
			LogLevel:     strings.TrimSpace(mf.Options.LogLevel),
			LogFormat:    strings.TrimSpace(mf.Options.LogFormat),
		},
	}
	for name, spec := range mf.Libraries {
		if spec != nil {
			spec.Path = strings.TrimSpace(spec.Path)
			spec.Git = strings.TrimSpace(spec.Git)
			spec.Rev = strings.TrimSpace(spec.Rev)
			spec.Tag = strings.TrimSpace(spec.Tag)
			spec.Branch = strings.TrimSpace(spec.Branch)
		}
		result.Libraries[sanitizeSegment(name)] = spec
	}
	return result
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
