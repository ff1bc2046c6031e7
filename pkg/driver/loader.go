package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"javelin/interpreter-go/pkg/resolver"
)

// EnvHome overrides the cache root for fetched libraries.
const EnvHome = "JAVELIN_HOME"

// Home returns the library cache root: $JAVELIN_HOME, else ~/.javelin.
func Home() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return home
	}
	if user, err := os.UserHomeDir(); err == nil {
		return filepath.Join(user, ".javelin")
	}
	return ".javelin"
}

// LibraryCacheDir holds every fetched version of a git library.
func LibraryCacheDir(home, name string) string {
	return filepath.Join(home, "pkg", "src", sanitizeSegment(name))
}

// CheckoutDir is where a fetched git library of the given version lives.
func CheckoutDir(home, name, version string) string {
	return filepath.Join(LibraryCacheDir(home, name), SanitizePathSegment(version))
}

// LibraryDir resolves where the sources of a declared library live. Git
// libraries must have been locked by a previous fetch.
func LibraryDir(manifest *Manifest, lock *Lockfile, home, name string) (string, error) {
	spec := manifest.Libraries[name]
	if spec == nil {
		return "", fmt.Errorf("library %s is not declared", name)
	}
	if spec.Path != "" {
		if filepath.IsAbs(spec.Path) {
			return spec.Path, nil
		}
		return filepath.Join(manifest.Dir(), spec.Path), nil
	}
	locked, ok := lock.Find(name)
	if !ok {
		return "", fmt.Errorf("library %s is not locked; run javelin deps", name)
	}
	return CheckoutDir(home, name, locked.Version), nil
}

// LoadLibraries declares the classes of every library of manifest into lib.
func LoadLibraries(lib *resolver.Library, manifest *Manifest, lock *Lockfile, home string, logger *slog.Logger) error {
	if manifest == nil {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for _, name := range manifest.LibraryNames() {
		dir, err := LibraryDir(manifest, lock, home, name)
		if err != nil {
			return err
		}
		classes, err := LoadClassFile(lib, filepath.Join(dir, ClassFileName))
		if err != nil {
			return fmt.Errorf("library %s: %w", name, err)
		}
		if locked, ok := lock.Find(name); ok {
			names := make([]string, 0, len(classes))
			for _, class := range classes {
				names = append(names, class.Name)
			}
			if locked.ClassesChanged(names) {
				logger.Warn("library classes differ from javelin.lock; run javelin deps", "library", name, "locked", locked.Classes, "declared", names)
			}
		}
		logger.Debug("library loaded", "library", name, "dir", dir, "classes", len(classes))
	}
	return nil
}

// SanitizePathSegment maps a version or revision to a safe directory name.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
