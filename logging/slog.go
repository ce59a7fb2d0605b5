package logging

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/lmittmann/tint"
)

// Format selects the console handler.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatColor Format = "color"
)

// SlogConfig configures the console logger.
type SlogConfig struct {
	Writer    io.Writer
	Level     slog.Leveler
	Format    Format
	AddSource bool
}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger builds a Logger on top of log/slog. FormatColor uses tint.
func NewSlogLogger(cfg SlogConfig) Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Level == nil {
		cfg.Level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{AddSource: cfg.AddSource, Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	case FormatColor:
		handler = tint.NewHandler(cfg.Writer, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: "2006-01-02 15:04:05.000",
		})
	default:
		handler = slog.NewTextHandler(cfg.Writer, opts)
	}

	return &slogLogger{logger: slog.New(handler)}
}

// attrs sorts keys so output is stable across runs.
func attrs(fields Fields) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

func (l *slogLogger) Debug(msg string, fields Fields) {
	l.logger.Debug(msg, attrs(fields)...)
}

func (l *slogLogger) Info(msg string, fields Fields) {
	l.logger.Info(msg, attrs(fields)...)
}

func (l *slogLogger) Warn(msg string, fields Fields) {
	l.logger.Warn(msg, attrs(fields)...)
}

func (l *slogLogger) Error(msg string, err error, fields Fields) {
	args := attrs(fields)
	if err != nil {
		args = append(args, tint.Err(err))
	}
	l.logger.Error(msg, args...)
}

func (l *slogLogger) WithFields(fields Fields) Logger {
	return &slogLogger{logger: l.logger.With(attrs(fields)...)}
}
