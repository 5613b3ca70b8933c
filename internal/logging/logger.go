// Package logging provides structured logging for exercheck using slog.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level aliases for convenience.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	defaultLogger *slog.Logger
	defaultOnce   sync.Once
)

// Options configures the logger behavior.
type Options struct {
	// Level sets the minimum log level. Defaults to LevelInfo.
	Level slog.Level
	// Output sets the output destination. Defaults to os.Stderr.
	Output io.Writer
	// JSON enables JSON output format.
	JSON bool
}

// DefaultOptions returns options suitable for CLI usage. Only warnings
// reach the terminal unless --verbose is given, so the report stays clean.
func DefaultOptions() Options {
	return Options{Level: LevelWarn, Output: os.Stderr}
}

// New creates a new logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}
	return slog.New(handler)
}

// Default returns the default logger, creating it if necessary.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(DefaultOptions())
	})
	return defaultLogger
}

// SetDefault replaces the default logger and slog's default.
func SetDefault(logger *slog.Logger) {
	defaultOnce.Do(func() {})
	defaultLogger = logger
	slog.SetDefault(logger)
}

type loggerKey struct{}

// NewContext returns a context with the logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from context, falling back to Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return Default()
}

// Attribute keys.
const (
	KeyCheck     = "check"
	KeyPath      = "path"
	KeyOperation = "operation"
	KeyCount     = "count"
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyRunID     = "run_id"
)

func Check(id string) slog.Attr { return slog.String(KeyCheck, id) }

func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

func RunID(id string) slog.Attr { return slog.String(KeyRunID, id) }

// Err returns an error attribute, or an empty one for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}
