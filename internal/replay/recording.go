// Package replay plays back an NDJSON trace recording as a trace.Source
package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/source"
	"github.com/vburojevic/tdb/internal/trace"
)

// Record types that are not trace events
const (
	RecordSource     = "source"
	RecordBreakpoint = "breakpoint"
)

// Record is one line of a recording
type Record struct {
	Type      string           `json:"type"`
	File      string           `json:"file,omitempty"`
	Line      int              `json:"line,omitempty"`
	Lines     []string         `json:"lines,omitempty"`
	Frame     *FrameRecord     `json:"frame,omitempty"`
	Args      string           `json:"args,omitempty"`
	Value     any              `json:"value,omitempty"`
	Exception *trace.Exception `json:"exception,omitempty"`
}

// FrameRecord is the state of a frame at one event, its id names one activation
type FrameRecord struct {
	ID       int            `json:"id"`
	Caller   int            `json:"caller,omitempty"` // 0 for the outermost frame
	Function string         `json:"function"`
	File     string         `json:"file"`
	Line     int            `json:"line"`
	VarNames []string       `json:"varnames,omitempty"`
	Locals   map[string]any `json:"locals,omitempty"`
}

// Event is a trace event read from a recording
type Event struct {
	Seq       int // 1-based position among events
	Kind      trace.Kind
	Frame     FrameRecord
	Args      string
	Value     any
	Exception trace.Exception
}

// Recording is a parsed recording
type Recording struct {
	Path        string
	Events      []Event
	Sources     map[string][]string
	Breakpoints map[string]map[int]bool
}

// LoadFile reads a recording, resolving relative sources against its directory
func LoadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	rec, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.Path = path
	return rec, nil
}

// Load parses a recording
func Load(r io.Reader) (*Recording, error) {
	rec := &Recording{
		Sources:     make(map[string][]string),
		Breakpoints: make(map[string]map[int]bool),
	}
	seen := make(map[int]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		var record Record
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("line %d: invalid record: %w", lineno, err)
		}
		if err := rec.add(record, seen); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return rec, nil
}

func (rec *Recording) add(record Record, seen map[int]bool) error {
	switch record.Type {
	case RecordSource:
		if record.File == "" {
			return fmt.Errorf("source record without file")
		}
		rec.Sources[record.File] = record.Lines
		return nil

	case RecordBreakpoint:
		if record.File == "" || record.Line < 1 {
			return fmt.Errorf("breakpoint record needs file and a positive line")
		}
		if rec.Breakpoints[record.File] == nil {
			rec.Breakpoints[record.File] = make(map[int]bool)
		}
		rec.Breakpoints[record.File][record.Line] = true
		return nil
	}

	kind := trace.Kind(record.Type)
	if !kind.Valid() {
		return fmt.Errorf("unknown record type %q", record.Type)
	}
	if record.Frame == nil {
		return fmt.Errorf("%s event without frame", kind)
	}
	fr := *record.Frame
	if fr.ID <= 0 {
		return fmt.Errorf("%s event: frame id must be positive", kind)
	}
	if fr.Caller != 0 && !seen[fr.Caller] {
		return fmt.Errorf("%s event: unknown caller frame %d", kind, fr.Caller)
	}
	if fr.Caller == fr.ID {
		return fmt.Errorf("%s event: frame %d is its own caller", kind, fr.ID)
	}
	seen[fr.ID] = true

	ev := Event{
		Seq:   len(rec.Events) + 1,
		Kind:  kind,
		Frame: fr,
		Args:  record.Args,
		Value: record.Value,
	}
	if record.Exception != nil {
		ev.Exception = *record.Exception
	}
	rec.Events = append(rec.Events, ev)
	return nil
}

// SourceCache returns a cache of embedded sources backed by the recording's directory
func (rec *Recording) SourceCache() *source.Cache {
	base := ""
	if rec.Path != "" {
		base = filepath.Dir(rec.Path)
	}
	c := source.NewCache(base)
	for file, lines := range rec.Sources {
		c.Add(file, lines)
	}
	return c
}

// Describe returns the status line text for the event
func (ev Event) Describe(src trace.SourceReader) string {
	switch ev.Kind {
	case trace.KindCall:
		return trace.DescribeCall(&frame{rec: ev.Frame}, ev.Args)
	case trace.KindLine:
		return trace.DescribeLine(&frame{rec: ev.Frame}, src)
	case trace.KindReturn:
		return trace.DescribeReturn(ev.Value)
	case trace.KindException:
		return trace.DescribeException(ev.Exception)
	}
	return string(ev.Kind)
}

// EventRecords converts the recording's events to transcript records
func (rec *Recording) EventRecords(src trace.SourceReader) []domain.EventRecord {
	out := make([]domain.EventRecord, 0, len(rec.Events))
	for _, ev := range rec.Events {
		out = append(out, *domain.NewEventRecord(ev.Seq, string(ev.Kind), ev.Frame.Function, ev.Frame.File, ev.Frame.Line, ev.Describe(src)))
	}
	return out
}
