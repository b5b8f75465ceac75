// Package output writes newline-delimited JSON records.
package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vburojevic/tdb/internal/domain"
)

// SchemaVersion is stamped on records this package builds itself.
const SchemaVersion = domain.SchemaVersion

// ErrorOutput is the NDJSON form of a command failure
type ErrorOutput struct {
	Type          string `json:"type"` // "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// NDJSONWriter writes one JSON object per line.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer on w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

// Write encodes any value as one line.
func (w *NDJSONWriter) Write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// WriteError writes an error record with an optional hint.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := &ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.Write(out)
}

// WriteSessionStart writes a session_start record.
func (w *NDJSONWriter) WriteSessionStart(s *domain.SessionStart) error { return w.Write(s) }

// WriteEvent writes an event record.
func (w *NDJSONWriter) WriteEvent(ev *domain.EventRecord) error { return w.Write(ev) }

// WriteCommand writes a command record.
func (w *NDJSONWriter) WriteCommand(c *domain.CommandRecord) error { return w.Write(c) }

// WriteSessionEnd writes a session_end record.
func (w *NDJSONWriter) WriteSessionEnd(e *domain.SessionEnd) error { return w.Write(e) }
