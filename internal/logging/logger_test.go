package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()

	lg, f := Init(dir)
	if f == nil {
		t.Fatal("expected a log file handle")
	}
	defer f.Close()

	lg.Info("logger starting", "interval", "60s")

	b, err := os.ReadFile(filepath.Join(dir, "enviro.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "logger starting") {
		t.Errorf("log file missing entry:\n%s", b)
	}
}

func TestInitFallbackReturnsNoFile(t *testing.T) {
	// A regular file where the log directory should be makes the open fail.
	blocker := filepath.Join(t.TempDir(), "logs")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	lg, f := Init(blocker)
	if lg == nil {
		t.Fatal("fallback should still return a usable logger")
	}
	if f != nil {
		t.Error("fallback must not hand back a file for the caller to close")
	}
}
