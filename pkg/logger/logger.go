// Package logger sets up the structured logger shared by the driver and CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLevel names the environment variable that overrides the configured level.
const EnvLevel = "JAVELIN_LOG"

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	logFile       *os.File
)

// Config holds logger configuration
type Config struct {
	Level     string // "debug", "info", "warn" or "error"
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel maps a level name to its slog level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", name)
	}
	return level, nil
}

// New builds a logger from cfg without installing it.
func New(cfg Config) (*slog.Logger, error) {
	levelName := cfg.Level
	if env := os.Getenv(EnvLevel); env != "" {
		levelName = env
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		mu.Lock()
		if logFile != nil {
			logFile.Close()
		}
		logFile = file
		mu.Unlock()
		output = file
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "", "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
	return slog.New(handler), nil
}

// Init installs the process logger built from cfg.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
	return nil
}

// Get returns the process logger, falling back to slog's default.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Close releases the log file opened by Init, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
