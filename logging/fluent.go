package logging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentConfig configures shipping to Fluent Bit.
type FluentConfig struct {
	Host     string
	Port     int
	Tag      string
	MinLevel slog.Leveler
	Async    bool
}

// Poster is the subset of *fluent.Fluent the adapter needs.
type Poster interface {
	Post(tag string, message any) error
	Close() error
}

// FluentLogger posts entries to Fluent Bit under "<tag>.<level>".
type FluentLogger struct {
	client   Poster
	tag      string
	fields   Fields
	minLevel slog.Level
}

// NewFluentClient dials Fluent Bit with the given config.
func NewFluentClient(cfg FluentConfig) (*fluent.Fluent, error) {
	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		Async:      cfg.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("connect fluent %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return client, nil
}

// NewFluentLogger wraps a fluent client as a Logger.
func NewFluentLogger(client Poster, cfg FluentConfig) (*FluentLogger, error) {
	if client == nil {
		return nil, fmt.Errorf("fluent client cannot be nil")
	}
	level := slog.LevelInfo
	if cfg.MinLevel != nil {
		level = cfg.MinLevel.Level()
	}
	tag := cfg.Tag
	if tag == "" {
		tag = "experience"
	}
	return &FluentLogger{client: client, tag: tag, fields: Fields{}, minLevel: level}, nil
}

func (f *FluentLogger) post(level slog.Level, name, msg string, err error, fields Fields) {
	if level < f.minLevel {
		return
	}
	data := mergeFields(f.fields, fields)
	data["level"] = name
	data["message"] = msg
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	if err != nil {
		data["error"] = err.Error()
	}
	// logging must never fail the caller
	_ = f.client.Post(f.tag+"."+name, map[string]any(data))
}

func (f *FluentLogger) Debug(msg string, fields Fields) {
	f.post(slog.LevelDebug, "debug", msg, nil, fields)
}

func (f *FluentLogger) Info(msg string, fields Fields) {
	f.post(slog.LevelInfo, "info", msg, nil, fields)
}

func (f *FluentLogger) Warn(msg string, fields Fields) {
	f.post(slog.LevelWarn, "warn", msg, nil, fields)
}

func (f *FluentLogger) Error(msg string, err error, fields Fields) {
	f.post(slog.LevelError, "error", msg, err, fields)
}

func (f *FluentLogger) WithFields(fields Fields) Logger {
	return &FluentLogger{
		client:   f.client,
		tag:      f.tag,
		fields:   mergeFields(f.fields, fields),
		minLevel: f.minLevel,
	}
}

// Close flushes and closes the underlying client.
func (f *FluentLogger) Close() error {
	return f.client.Close()
}
