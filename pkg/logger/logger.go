// Package logger builds the zerolog logger used across the generator:
// rotated file output under a log directory, with an optional human-readable
// console stream for interactive runs.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog.Logger with field-chaining helpers.
type Logger struct {
	zerolog.Logger
}

// Config controls log destination and rotation.
type Config struct {
	Level      string // debug, info, warn, error
	LogDir     string
	Filename   string // log file name inside LogDir
	MaxSizeMB  int
	MaxBackups int
	Console    bool // mirror events to stdout in console format
}

// Retention window for rotated files.
const maxAgeDays = 30

// New creates a logger writing rotated JSON logs under cfg.LogDir. When the
// directory cannot be created the logger degrades to plain stderr so startup
// errors are never swallowed.
func New(cfg Config) *Logger {
	if cfg.LogDir == "" {
		cfg.LogDir = "./logs"
	}
	if cfg.Filename == "" {
		cfg.Filename = "contentgen.log"
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return &Logger{
			Logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
		}
	}

	zerolog.SetGlobalLevel(parseLogLevel(cfg.Level))

	writers := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, cfg.Filename),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     maxAgeDays,
	}}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{
		Logger: zerolog.New(io.MultiWriter(writers...)).
			With().
			Timestamp().
			Caller().
			Logger(),
	}
}

// parseLogLevel maps a config level string to a zerolog level, defaulting
// unknown values to info.
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close releases logger resources. Zerolog writes are unbuffered so there is
// nothing to flush; the method exists so callers can defer it uniformly.
func (l *Logger) Close() error {
	return nil
}

// WithField returns a child logger with one extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Logger: l.Logger.With().Interface(key, value).Logger()}
}

// WithFields returns a child logger with the given fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.Logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{Logger: ctx.Logger()}
}

// WithError returns a child logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With().Err(err).Logger()}
}
