package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedEntry struct {
	tag  string
	data map[string]any
}

type fakePoster struct {
	mu      sync.Mutex
	entries []postedEntry
	closed  bool
}

func (p *fakePoster) Post(tag string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, postedEntry{tag: tag, data: message.(map[string]any)})
	return nil
}

func (p *fakePoster) Close() error {
	p.closed = true
	return nil
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSlogLogger_WritesFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(SlogConfig{Writer: &buf, Level: slog.LevelDebug})

	logger.WithFields(Fields{"component": "repository"}).
		Error("remote fetch failed", errors.New("boom"), Fields{"operation": "get_recent"})

	out := buf.String()
	assert.Contains(t, out, "remote fetch failed")
	assert.Contains(t, out, "component=repository")
	assert.Contains(t, out, "operation=get_recent")
	assert.Contains(t, out, "boom")
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(SlogConfig{Writer: &buf, Level: slog.LevelWarn, Format: FormatJSON})

	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.True(t, strings.Contains(buf.String(), `"msg":"shown"`))
}

func TestMultiLogger_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi, err := NewMultiLogger(
		NewSlogLogger(SlogConfig{Writer: &a}),
		NewSlogLogger(SlogConfig{Writer: &b}),
	)
	require.NoError(t, err)

	multi.WithFields(Fields{"k": "v"}).Info("hello", nil)

	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, b.String(), "k=v")
}

func TestMultiLogger_RequiresLogger(t *testing.T) {
	_, err := NewMultiLogger()
	assert.Error(t, err)
}

func TestFluentLogger_PostsTaggedEntries(t *testing.T) {
	poster := &fakePoster{}
	logger, err := NewFluentLogger(poster, FluentConfig{Tag: "tour", MinLevel: slog.LevelInfo})
	require.NoError(t, err)

	child := logger.WithFields(Fields{"component": "localstore"})
	child.Debug("dropped", nil)
	child.Warn("like miss", Fields{"id": "42"})
	child.Error("save failed", errors.New("disk full"), nil)

	require.Len(t, poster.entries, 2)
	assert.Equal(t, "tour.warn", poster.entries[0].tag)
	assert.Equal(t, "42", poster.entries[0].data["id"])
	assert.Equal(t, "localstore", poster.entries[0].data["component"])
	assert.Equal(t, "tour.error", poster.entries[1].tag)
	assert.Equal(t, "disk full", poster.entries[1].data["error"])

	require.NoError(t, logger.Close())
	assert.True(t, poster.closed)
}

func TestFluentLogger_RejectsNilClient(t *testing.T) {
	_, err := NewFluentLogger(nil, FluentConfig{})
	assert.Error(t, err)
}
