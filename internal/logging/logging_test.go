package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hrdesk.log")

	logger, closeFn, err := Setup(Options{Path: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	logger.Warn("chat request failed", "status", 502, "endpoint", "/api/chat")
	logger.Debug("hidden")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug is off):\n%s", len(lines), data)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "chat request failed" || rec["level"] != "WARN" || rec["endpoint"] != "/api/chat" {
		t.Errorf("record = %v", rec)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}
}

func TestSetup_VerboseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrdesk.log")

	logger, closeFn, _ := Setup(Options{Path: path, Verbose: true})
	logger.Debug("visible")
	closeFn()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "visible") {
		t.Error("verbose should enable debug records")
	}
}

func TestSetup_VerboseStderr(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	logger, _, err := Setup(Options{Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.With("conv", "3f2a").WithGroup("http").Info("sent", "status", 200)

	out := buf.String()
	for _, want := range []string{"INF sent", "conv=3f2a", "http.status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSetup_Discard(t *testing.T) {
	logger, closeFn, err := Setup(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("discard logger should be disabled")
	}
	if err := closeFn(); err != nil {
		t.Error(err)
	}
}

func TestSetup_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	os.WriteFile(blocker, nil, 0o600)

	if _, _, err := Setup(Options{Path: filepath.Join(blocker, "x.log")}); err == nil {
		t.Error("expected error when the log directory cannot be created")
	}
}
