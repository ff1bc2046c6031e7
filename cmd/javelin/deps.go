package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"javelin/interpreter-go/pkg/driver"
	"javelin/interpreter-go/pkg/logger"
	"javelin/interpreter-go/pkg/resolver"
)

func runDeps(args []string, flags globalFlags) int {
	update := false
	switch {
	case len(args) == 0, len(args) == 1 && args[0] == "install":
	case len(args) == 1 && args[0] == "update":
		update = true
	default:
		fmt.Fprintf(stderr, "unknown deps command: %s\n", strings.Join(args, " "))
		return 1
	}

	proj, err := loadProject(".")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	if proj.manifest == nil {
		fmt.Fprintf(stderr, "javelin deps requires %s\n", driver.ManifestFileName)
		return 1
	}
	log, err := configureLogging(proj.manifest, flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Close()

	lock := proj.lock
	if lock == nil {
		lock = driver.NewLockfile(proj.manifest.Name, cliToolVersion)
	}
	installer := newLibraryInstaller(proj.manifest, driver.Home(), log)
	if err := installer.Install(lock, update); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	lock.Tool = cliToolVersion
	if err := driver.WriteLockfile(lock, driver.LockfilePath(proj.manifest)); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "locked %d libraries in %s\n", len(lock.Libraries), driver.LockfileName)
	return 0
}

// libraryInstaller resolves every library of a manifest to a lock entry.
type libraryInstaller struct {
	manifest *driver.Manifest
	home     string
	git      *gitFetcher
	logger   *slog.Logger
}

func newLibraryInstaller(manifest *driver.Manifest, home string, log *slog.Logger) *libraryInstaller {
	return &libraryInstaller{manifest: manifest, home: home, git: newGitFetcher(home), logger: log}
}

// Install locks each library and drops entries the manifest no longer names.
// Locked git libraries whose checkout is present are kept unless update is set.
func (i *libraryInstaller) Install(lock *driver.Lockfile, update bool) error {
	names := i.manifest.LibraryNames()
	kept := make([]*driver.LockedLibrary, 0, len(names))
	for _, name := range names {
		spec := i.manifest.Libraries[name]
		entry, err := i.lockLibrary(lock, name, spec, update)
		if err != nil {
			return fmt.Errorf("library %s: %w", name, err)
		}
		dir, err := driver.LibraryDir(i.manifest, &driver.Lockfile{Libraries: []*driver.LockedLibrary{entry}}, i.home, name)
		if err != nil {
			return err
		}
		classes, err := driver.LoadClassFile(resolver.NewLibrary(), filepath.Join(dir, driver.ClassFileName))
		if err != nil {
			return fmt.Errorf("library %s: %w", name, err)
		}
		entry.Classes = make([]string, 0, len(classes))
		for _, class := range classes {
			entry.Classes = append(entry.Classes, class.Name)
		}
		i.logger.Info("library locked", "library", name, "version", entry.Version, "classes", len(classes))
		kept = append(kept, entry)
	}
	lock.Libraries = nil
	for _, entry := range kept {
		lock.Put(entry)
	}
	return nil
}

func (i *libraryInstaller) lockLibrary(lock *driver.Lockfile, name string, spec *driver.LibrarySpec, update bool) (*driver.LockedLibrary, error) {
	if spec.Path != "" {
		dir, err := driver.LibraryDir(i.manifest, nil, i.home, name)
		if err != nil {
			return nil, err
		}
		checksum, err := dirChecksum(dir)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", dir, err)
		}
		return &driver.LockedLibrary{Name: name, Version: "path", Source: "path:" + spec.Path, Checksum: checksum}, nil
	}

	if existing, ok := lock.Find(name); ok && !update && strings.HasPrefix(existing.Source, "git+"+spec.Git+"@") {
		if _, err := os.Stat(driver.CheckoutDir(i.home, name, existing.Version)); err == nil {
			i.logger.Debug("library already fetched", "library", name, "version", existing.Version)
			return existing, nil
		}
	}
	entry, _, err := i.git.Fetch(name, spec)
	return entry, err
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch checks out spec into the library cache and returns its lock entry
// and the resolved commit.
func (g *gitFetcher) Fetch(name string, spec *driver.LibrarySpec) (*driver.LockedLibrary, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("library %q: git URL required", name)
	}

	baseDir := driver.LibraryCacheDir(g.cacheDir, name)
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, "", err
	}

	checksum, err := dirChecksum(filepath.Join(baseDir, driver.SanitizePathSegment(version)))
	if err != nil {
		return nil, "", err
	}
	return &driver.LockedLibrary{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, commit, nil
}

func ensureGitCheckout(baseDir, url string, spec *driver.LibrarySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, driver.SanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return rev, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionFromSpec names the revision to resolve in a fresh clone, where
// only the default branch has a local head.
func gitRevisionFromSpec(spec *driver.LibrarySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git libraries require rev, tag, or branch")
}
