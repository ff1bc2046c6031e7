package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"javelin/interpreter-go/pkg/driver"
	"javelin/interpreter-go/pkg/logger"
	"javelin/interpreter-go/pkg/resolver"
)

// The CLI reports failures itself, so the session's warnings stay quiet
// unless a level is asked for.
const defaultLogLevel = "error"

// project is the manifest and lockfile governing a run; both may be nil.
type project struct {
	manifest *driver.Manifest
	lock     *driver.Lockfile
}

func loadProject(dir string) (*project, error) {
	path, err := driver.FindManifest(dir)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return &project{}, nil
		}
		return nil, err
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	lock, err := driver.LoadLockfile(driver.LockfilePath(manifest))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load lockfile: %w", err)
		}
		lock = nil
	}
	return &project{manifest: manifest, lock: lock}, nil
}

func configureLogging(manifest *driver.Manifest, flags globalFlags) (*slog.Logger, error) {
	cfg := logger.DefaultConfig()
	cfg.Level = defaultLogLevel
	cfg.Output = stderr
	if manifest != nil {
		if manifest.Options.LogLevel != "" {
			cfg.Level = manifest.Options.LogLevel
		}
		if manifest.Options.LogFormat != "" {
			cfg.Format = manifest.Options.LogFormat
		}
	}
	if flags.LogLevel != "" {
		cfg.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Format = flags.LogFormat
	}
	cfg.LogFile = flags.LogFile
	if err := logger.Init(cfg); err != nil {
		return nil, err
	}
	return logger.Get(), nil
}

// newSession builds a session over java.lang plus the project's libraries.
func (p *project) newSession(flags globalFlags) (*driver.Session, error) {
	log, err := configureLogging(p.manifest, flags)
	if err != nil {
		return nil, err
	}
	lib := resolver.NewLibrary()
	if err := driver.LoadLibraries(lib, p.manifest, p.lock, driver.Home(), log); err != nil {
		return nil, err
	}
	opts := driver.Options{Library: lib, Stdout: stdout, Stderr: stderr, Logger: log}
	if p.manifest != nil {
		opts.MaxCallDepth = p.manifest.Options.MaxCallDepth
	}
	return driver.NewSession(opts)
}
