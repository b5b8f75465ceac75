package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const unnamed = "???"

// DescribeCall formats a call event for the status line
func DescribeCall(frame Frame, args string) string {
	return fmt.Sprintf("called %s, args: %s", functionName(frame), args)
}

// DescribeLine formats a line event with its source text when available
func DescribeLine(frame Frame, src SourceReader) string {
	text := ""
	if src != nil {
		if line, ok, err := src.SourceLine(frame.File(), frame.Line()); err == nil && ok {
			text = strings.TrimSpace(line)
		}
	}
	return strings.TrimRight(fmt.Sprintf("executed [%d] %s", frame.Line(), text), " ")
}

// DescribeReturn formats a return event
func DescribeReturn(value any) string {
	return "returned " + Repr(value)
}

// DescribeException formats an exception event
func DescribeException(exc Exception) string {
	if exc.Message == "" {
		return "raised exception " + exc.Type
	}
	return fmt.Sprintf("raised exception %s: %s", exc.Type, exc.Message)
}

func functionName(frame Frame) string {
	if name := frame.Function(); name != "" {
		return name
	}
	return unnamed
}

// Repr renders a local value the way the panels show it
func Repr(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return fmt.Sprint(val)
	case fmt.Stringer:
		return val.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
