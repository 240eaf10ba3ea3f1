package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rescp17/stageCatalog/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging installs the default slog logger. The TUI owns the terminal,
// so browse logs to the configured file; the other commands log to stderr.
func setupLogging(cfg config.LogConfig, toFile bool) (io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if toFile {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closer, nil
}

func closeLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close log file", "error", err)
	}
}
