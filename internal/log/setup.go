package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures Setup.
type Options struct {
	// LogFile is the path of the crawl log. It is truncated on open.
	// Empty disables the file sink.
	LogFile string

	// Console receives warnings and errors (everything with Verbose).
	// Nil disables the console sink.
	Console io.Writer

	// Verbose lowers the console level to debug.
	Verbose bool

	// JSON writes the log file as JSON lines.
	JSON bool
}

// Setup builds the crawl logger. The returned close function releases the
// log file and is safe to call when no file was opened.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	handlers := make([]slog.Handler, 0, 2)
	closeFn := func() error { return nil }

	if opts.LogFile != "" {
		if dir := filepath.Dir(opts.LogFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, closeFn, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path comes from configuration
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		closeFn = f.Close
		handlers = append(handlers, NewFileHandler(f, opts.JSON))
	}

	if opts.Console != nil {
		handlers = append(handlers, NewConsoleHandler(opts.Console, opts.Verbose))
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closeFn, nil
	}

	return slog.New(NewSecureHandler(newFanoutHandler(handlers...))), closeFn, nil
}

// NewFileHandler returns the handler used for log.txt: INFO and above.
func NewFileHandler(w io.Writer, jsonFormat bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonFormat {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// NewConsoleHandler returns the console handler: WARN and above, or DEBUG
// and above when verbose.
func NewConsoleHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// NewSecureLogger creates a text logger writing to w with redaction.
// Verbose selects debug level; otherwise only warnings and errors pass.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(NewConsoleHandler(w, verbose)))
}
