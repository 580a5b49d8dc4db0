// Package logging configures the structured logger used by nmapconv.
//
// Records go to stderr by default so that stdout only carries command output.
// Every conversion logs through a child logger tagged with its component and
// conversion ID.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const (
	logDirPerm  = 0o750
	logFilePerm = 0o600
)

// LogLevel names a minimum record level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogFormat selects the record encoding.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Config holds logging configuration.
type Config struct {
	Level  LogLevel  `yaml:"level" json:"level"`
	Format LogFormat `yaml:"format" json:"format"`
	// Output is "stdout", "stderr" or a file path. Empty means stderr.
	Output    string `yaml:"output" json:"output"`
	AddSource bool   `yaml:"add_source" json:"add_source"`
}

// DefaultConfig returns warn-level text logging to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: "stderr",
	}
}

// Logger wraps slog.Logger with conversion-specific helpers.
type Logger struct {
	*slog.Logger

	// closer is the log file opened by New, nil for standard streams.
	closer io.Closer
}

// ParseLevel maps a level name to its slog level, case-insensitively.
// Unknown names fall back to info.
func ParseLevel(level LogLevel) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(string(level)))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New creates a logger writing to cfg.Output. Parent directories of a log
// file are created as needed.
func New(cfg Config) (*Logger, error) {
	w, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	logger := NewWithWriter(cfg, w)
	if c, ok := w.(io.Closer); ok && w != os.Stdout && w != os.Stderr {
		logger.closer = c
	}
	return logger, nil
}

// Close releases the log file opened by New. Records logged afterwards are
// dropped. Loggers writing to a standard stream or a caller-supplied writer
// have nothing to close.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	c := l.closer
	l.closer = nil
	return c.Close()
}

func openOutput(target string) (io.Writer, error) {
	switch target {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), logDirPerm); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm) //nolint:gosec // operator-configured log path
	if err != nil {
		return nil, err
	}
	return file, nil
}

// NewWithWriter creates a logger that writes to w, ignoring cfg.Output.
func NewWithWriter(cfg Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a logger with DefaultConfig.
func NewDefault() *Logger {
	return NewWithWriter(DefaultConfig(), os.Stderr)
}

// WithFields returns a child logger carrying the given key/value pairs.
// Children share the parent's output and are closed through it.
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{Logger: l.With(fields...)}
}

// WithComponent tags records with the emitting component.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// WithConversionID tags records with the ID of one conversion run.
func (l *Logger) WithConversionID(id string) *Logger {
	return l.WithFields("conversion_id", id)
}

// WithError attaches err to every record.
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields("error", err)
}

// InfoConvert logs a conversion event for the given source document.
func (l *Logger) InfoConvert(msg, source string, fields ...any) {
	l.Info(msg, append([]any{"source", source}, fields...)...)
}

// FailedConvert logs a failed conversion at debug level. The error itself is
// returned to the caller, which decides how to report it.
func (l *Logger) FailedConvert(msg, source string, err error, fields ...any) {
	l.WithError(err).Debug(msg, append([]any{"source", source}, fields...)...)
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewDefault())
}

// SetDefault replaces the package-level logger.
func SetDefault(logger *Logger) {
	defaultLogger.Store(logger)
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// Warn logs at warn level using the package-level logger. It is used where no
// component logger is in scope, such as deferred file closes.
func Warn(msg string, fields ...any) {
	Default().Warn(msg, fields...)
}
