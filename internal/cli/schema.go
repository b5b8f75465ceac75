package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// SchemaCmd outputs JSON Schema for recordings and transcripts
type SchemaCmd struct {
	Type []string `short:"t" help:"Schemas to include (recording,transcript,error). Default: all"`
}

// schemaGroups maps a --type value to the definitions it selects
var schemaGroups = map[string][]string{
	"recording":  {"recording"},
	"transcript": {"session_start", "event", "command", "session_end"},
	"error":      {"error"},
}

var schemaOrder = []string{"recording", "transcript", "error"}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"recording":     recordingSchema(),
		"session_start": sessionStartSchema(),
		"event":         eventSchema(),
		"command":       commandSchema(),
		"session_end":   sessionEndSchema(),
		"error":         errorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := lo.Map(c.Type, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})
	if len(typesToOutput) == 0 {
		typesToOutput = schemaOrder
	}
	if unknown := lo.Filter(typesToOutput, func(t string, _ int) bool {
		_, ok := schemaGroups[t]
		return !ok
	}); len(unknown) > 0 {
		return outputErrorCommon(globals, codeInvalidFlags,
			fmt.Sprintf("unknown schema type %q", unknown[0]),
			"choose from "+strings.Join(schemaOrder, ", "))
	}

	defs := map[string]interface{}{}
	for _, name := range lo.Uniq(lo.FlatMap(typesToOutput, func(t string, _ int) []string {
		return schemaGroups[t]
	})) {
		defs[name] = schemas[name]
	}

	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "tdb Schemas",
		"description": "JSON Schema definitions for tdb recordings, transcripts and errors",
		"definitions": defs,
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func str(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func integer(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func constant(value string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "const": value}
}

func frameSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "State of one frame activation at an event",
		"properties": map[string]interface{}{
			"id":       integer("Activation id, unique until the frame returns"),
			"caller":   integer("Id of the calling frame; omitted for the outermost frame"),
			"function": str("Function name"),
			"file":     str("Source file"),
			"line":     integer("Current line, 1-based"),
			"varnames": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Variable names declared by the function, in order",
			},
			"locals": map[string]interface{}{
				"type":        "object",
				"description": "Local variable values by name",
			},
		},
		"required": []string{"id", "function", "file", "line"},
	}
}

func recordingSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Recording Line",
		"description": "One line of a trace recording. Blank lines and lines starting with # are ignored",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{
				"type": "string",
				"enum": []string{"source", "breakpoint", "call", "line", "return", "exception"},
			},
			"file": str("source, breakpoint: the file the record applies to"),
			"line": integer("breakpoint: line number, 1-based"),
			"lines": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "source: the file's lines",
			},
			"frame": frameSchema(),
			"args":  str("call: formatted arguments"),
			"value": map[string]interface{}{
				"description": "return: the returned value",
			},
			"exception": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type":    str("Exception type"),
					"message": str("Exception message"),
				},
				"required": []string{"type"},
			},
		},
		"required": []string{"type"},
	}
}

func sessionStartSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Session Start",
		"properties": map[string]interface{}{
			"type":          constant("session_start"),
			"schemaVersion": integer("Record schema version"),
			"session_id":    str("Unique session id (UUID)"),
			"recording":     str("Path of the replayed recording"),
			"timestamp":     map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "schemaVersion", "session_id", "timestamp"},
	}
}

func eventSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Event",
		"description": "A trace event the debugger stopped at (also the output of tdb events)",
		"properties": map[string]interface{}{
			"type":          constant("event"),
			"schemaVersion": integer("Record schema version"),
			"seq":           integer("Position of the event in the trace, 1-based"),
			"kind": map[string]interface{}{
				"type": "string",
				"enum": []string{"call", "line", "return", "exception"},
			},
			"function":    str("Function of the frame"),
			"file":        str("Source file of the frame"),
			"line":        integer("Line of the frame"),
			"description": str("Status line text, e.g. \"executed [3] x = 1\""),
			"repeat":      integer("tdb events --collapse: number of identical consecutive events"),
			"timestamp":   map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "seq", "kind", "function", "file", "line", "description"},
	}
}

func commandSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Command",
		"properties": map[string]interface{}{
			"type":          constant("command"),
			"schemaVersion": integer("Record schema version"),
			"seq":           integer("Seq of the event the command was typed at"),
			"input":         str("Token as typed"),
			"action": map[string]interface{}{
				"type": "string",
				"enum": []string{"quit", "step", "next", "return", "vars", "watch", "unwatch", "jump"},
			},
			"argument":  str("Answer to the follow-up prompt of watch, unwatch and jump"),
			"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "seq", "input", "action"},
	}
}

func sessionEndSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Session End",
		"properties": map[string]interface{}{
			"type":          constant("session_end"),
			"schemaVersion": integer("Record schema version"),
			"session_id":    str("Session id from session_start"),
			"reason": map[string]interface{}{
				"type": "string",
				"enum": []string{"quit", "finished", "interrupted", "input_closed"},
			},
			"summary": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"events":           integer("Events stopped at"),
					"calls":            integer("Call events"),
					"lines":            integer("Line events"),
					"returns":          integer("Return events"),
					"exceptions":       integer("Exception events"),
					"commands":         integer("Commands dispatched"),
					"duration_seconds": integer("Session length"),
				},
			},
			"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "session_id", "reason", "summary", "timestamp"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Error message from tdb",
		"properties": map[string]interface{}{
			"type": constant("error"),
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Error code",
				"enum": []string{
					codeInvalidFlags,
					codeRecordingInvalid,
					codeRecordFailed,
					codeInvalidWhere,
					codeTUIFailed,
				},
			},
			"message": str("Human-readable error description"),
			"hint":    str("Suggested fix"),
		},
		"required": []string{"type", "code", "message"},
	}
}
