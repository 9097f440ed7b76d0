// Package logging configures slog to write to both stdout and an append
// log file, so the logger's history survives SSH sessions on the Pi.
package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// Init returns a slog.Logger writing to stdout and <logDir>/enviro.log,
// and the opened file so callers can Close() on shutdown. If the file
// cannot be opened it falls back to stdout only and the returned file is
// nil.
func Init(logDir string) (*slog.Logger, *os.File) {
	_ = os.MkdirAll(logDir, 0o755)

	filePath := filepath.Join(logDir, "enviro.log")
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		logger.Error("failed to open log file; falling back to stdout only", "error", err)
		return logger, nil
	}

	mw := NewMultiWriter(f, os.Stdout)
	h := slog.NewTextHandler(mw, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h)

	// make legacy stdlib log align to our multi-writer too
	log.SetOutput(mw)
	return logger, f
}
