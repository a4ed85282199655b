// Package logging builds the emulator's slog.Logger: a file-backed text
// handler with a string-configurable level, falling back to stderr when
// no log path is given.
package logging

import (
	"log/slog"
	"os"
)

// New opens path (creating/appending) and returns a text-handler logger
// at the given level ("debug", "info", "warn", "error"; unrecognized
// values fall back to info). If path is empty, logs go to stderr instead
// of a file.
func New(path string, level string) (*slog.Logger, error) {
	var w *os.File
	if path == "" {
		w = os.Stderr
	} else {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
	}

	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler), nil
}
