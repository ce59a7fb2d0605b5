package testsupport

import (
	"sync"

	"github.com/goliatone/go-experience-repository/logging"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Err     error
	Fields  logging.Fields
}

// RecordingLogger captures entries for assertions. Children created with
// WithFields share the same entry list.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  logging.Fields
}

// NewRecordingLogger returns an empty recorder.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
		fields:  logging.Fields{},
	}
}

func (r *RecordingLogger) record(level, msg string, err error, fields logging.Fields) {
	merged := make(logging.Fields, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, LogEntry{Level: level, Message: msg, Err: err, Fields: merged})
}

func (r *RecordingLogger) Debug(msg string, fields logging.Fields) { r.record("debug", msg, nil, fields) }
func (r *RecordingLogger) Info(msg string, fields logging.Fields)  { r.record("info", msg, nil, fields) }
func (r *RecordingLogger) Warn(msg string, fields logging.Fields)  { r.record("warn", msg, nil, fields) }

func (r *RecordingLogger) Error(msg string, err error, fields logging.Fields) {
	r.record("error", msg, err, fields)
}

func (r *RecordingLogger) WithFields(fields logging.Fields) logging.Logger {
	merged := make(logging.Fields, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &RecordingLogger{mu: r.mu, entries: r.entries, fields: merged}
}

// Entries returns a copy of everything recorded so far.
func (r *RecordingLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// Has reports whether an entry with level and message was recorded.
func (r *RecordingLogger) Has(level, msg string) bool {
	for _, entry := range r.Entries() {
		if entry.Level == level && entry.Message == msg {
			return true
		}
	}
	return false
}
