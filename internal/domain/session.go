package domain

import "time"

// SchemaVersion is the version of every transcript record.
const SchemaVersion = 1

// End reasons for SessionEnd.
const (
	EndQuit        = "quit"
	EndFinished    = "finished"
	EndInterrupted = "interrupted"
	EndInputClosed = "input_closed"
)

// SessionStart is emitted when the debugger attaches to a trace
type SessionStart struct {
	Type          string `json:"type"`          // "session_start"
	SchemaVersion int    `json:"schemaVersion"` // 1
	SessionID     string `json:"session_id"`
	Recording     string `json:"recording,omitempty"` // Path of the replayed recording
	Timestamp     string `json:"timestamp"`           // ISO8601 timestamp
}

// EventRecord describes one trace event the debugger stopped at
type EventRecord struct {
	Type          string `json:"type"` // "event"
	SchemaVersion int    `json:"schemaVersion"`
	Seq           int    `json:"seq"`
	Kind          string `json:"kind"` // call, line, return, exception
	Function      string `json:"function"`
	File          string `json:"file"`
	Line          int    `json:"line"`
	Description   string `json:"description"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// CommandRecord describes one command typed at the prompt
type CommandRecord struct {
	Type          string `json:"type"` // "command"
	SchemaVersion int    `json:"schemaVersion"`
	Seq           int    `json:"seq"`   // Seq of the event the command was typed at
	Input         string `json:"input"` // Raw token as typed
	Action        string `json:"action"`
	Argument      string `json:"argument,omitempty"` // Answer to a follow-up prompt
	Timestamp     string `json:"timestamp,omitempty"`
}

// SessionEnd is emitted when the session stops
type SessionEnd struct {
	Type          string         `json:"type"` // "session_end"
	SchemaVersion int            `json:"schemaVersion"`
	SessionID     string         `json:"session_id"`
	Reason        string         `json:"reason"`
	Summary       SessionSummary `json:"summary"`
	Timestamp     string         `json:"timestamp"`
}

// SessionSummary contains statistics about a completed session
type SessionSummary struct {
	Events          int `json:"events"`
	Calls           int `json:"calls"`
	Lines           int `json:"lines"`
	Returns         int `json:"returns"`
	Exceptions      int `json:"exceptions"`
	Commands        int `json:"commands"`
	DurationSeconds int `json:"duration_seconds"`
}

// NewSessionStart creates a new SessionStart event
func NewSessionStart(id, recording string, now time.Time) *SessionStart {
	return &SessionStart{
		Type:          "session_start",
		SchemaVersion: SchemaVersion,
		SessionID:     id,
		Recording:     recording,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
}

// NewSessionEnd creates a new SessionEnd event
func NewSessionEnd(id, reason string, summary SessionSummary, now time.Time) *SessionEnd {
	return &SessionEnd{
		Type:          "session_end",
		SchemaVersion: SchemaVersion,
		SessionID:     id,
		Reason:        reason,
		Summary:       summary,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
}

// NewEventRecord creates an event record without a timestamp
func NewEventRecord(seq int, kind, function, file string, line int, description string) *EventRecord {
	return &EventRecord{
		Type:          "event",
		SchemaVersion: SchemaVersion,
		Seq:           seq,
		Kind:          kind,
		Function:      function,
		File:          file,
		Line:          line,
		Description:   description,
	}
}
