// Package logging builds the process logger: a text handler on stderr,
// optionally teed to a size-rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Verbose forces debug and Quiet forces warn; Verbose wins.
	Verbose bool
	Quiet   bool

	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Stderr overrides the console writer, os.Stderr when nil.
	Stderr io.Writer
}

// New returns the logger and a close function for the log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Stderr
	if console == nil {
		console = os.Stderr
	}

	w := console
	closeFn := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			LocalTime:  true,
		}
		w = io.MultiWriter(console, rotator)
		closeFn = rotator.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(opts)})
	return slog.New(handler), closeFn, nil
}

// Level resolves the effective level from the flags and the configured name.
func Level(opts Options) slog.Level {
	switch {
	case opts.Verbose:
		return slog.LevelDebug
	case opts.Quiet:
		return slog.LevelWarn
	}
	return ParseLevel(opts.Level)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
