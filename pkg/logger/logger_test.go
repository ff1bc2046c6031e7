package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	be.Err(t, err, nil)
	be.Equal(t, level, slog.LevelDebug)

	level, err = ParseLevel(" WARN ")
	be.Err(t, err, nil)
	be.Equal(t, level, slog.LevelWarn)

	level, err = ParseLevel("")
	be.Err(t, err, nil)
	be.Equal(t, level, slog.LevelInfo)

	_, err = ParseLevel("loud")
	be.Err(t, err, "unknown level")
}

func TestNewJSONRespectsLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	be.Err(t, err, nil)

	l.Info("dropped")
	l.Warn("kept", "statement", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	be.Equal(t, len(lines), 1)
	var record map[string]any
	be.Err(t, json.Unmarshal([]byte(lines[0]), &record), nil)
	be.Equal(t, record["msg"], "kept")
	be.Equal(t, record["statement"], float64(3))
}

func TestEnvironmentOverridesLevel(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	l, err := New(Config{Level: "error", Output: &buf})
	be.Err(t, err, nil)
	l.Debug("visible")
	be.True(t, strings.Contains(buf.String(), "msg=visible"))
}

func TestUnknownFormat(t *testing.T) {
	t.Setenv(EnvLevel, "")
	_, err := New(Config{Format: "xml"})
	be.Err(t, err, "unknown format")
}

func TestInitWritesToLogFile(t *testing.T) {
	t.Setenv(EnvLevel, "")
	path := filepath.Join(t.TempDir(), "javelin.log")
	be.Err(t, Init(Config{Level: "info", LogFile: path}), nil)
	t.Cleanup(func() { _ = Close() })

	Get().Info("to file")
	be.Err(t, Close(), nil)

	data, err := os.ReadFile(path)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(data), "msg=\"to file\""))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	be.True(t, !l.Enabled(t.Context(), slog.LevelError))
}
