package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/domain"
)

// WhereClause represents a parsed --where condition
type WhereClause struct {
	Field    string
	Operator string
	Value    string
	regex    *regexp.Regexp // Compiled regex for ~ and !~ operators
	line     int            // Parsed value for >= and <=
}

var whereFields = []string{"kind", "function", "file", "line", "description"}

// ParseWhereClause parses a where clause like "kind=call" or "description~return"
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
func ParseWhereClause(clause string) (*WhereClause, error) {
	// Try operators in order of length (longest first to avoid partial matches)
	operators := []string{"!~", ">=", "<=", "!=", "~", "=", "^", "$"}

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx > 0 {
			field := strings.ToLower(strings.TrimSpace(clause[:idx]))
			value := strings.TrimSpace(clause[idx+len(op):])

			if field == "" || value == "" {
				return nil, fmt.Errorf("invalid where clause: %s", clause)
			}
			if !lo.Contains(whereFields, field) {
				return nil, fmt.Errorf("unknown field %q in where clause (use %s)", field, strings.Join(whereFields, ", "))
			}

			wc := &WhereClause{
				Field:    field,
				Operator: op,
				Value:    value,
			}

			switch op {
			case "~", "!~":
				re, err := regexp.Compile(value)
				if err != nil {
					return nil, fmt.Errorf("invalid regex in where clause '%s': %w", clause, err)
				}
				wc.regex = re
			case ">=", "<=":
				if field != "line" {
					return nil, fmt.Errorf("%s only compares line numbers: %s", op, clause)
				}
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("invalid line number in where clause '%s': %w", clause, err)
				}
				wc.line = n
			}

			return wc, nil
		}
	}

	return nil, fmt.Errorf("no valid operator found in where clause: %s (use =, !=, ~, !~, >=, <=, ^, $)", clause)
}

// Match checks if an event matches this where clause
func (wc *WhereClause) Match(ev *domain.EventRecord) bool {
	fieldValue := wc.getFieldValue(ev)

	switch wc.Operator {
	case "=":
		return fieldValue == wc.Value
	case "!=":
		return fieldValue != wc.Value
	case "~": // Contains (regex)
		return wc.regex.MatchString(fieldValue)
	case "!~": // Not contains (regex)
		return !wc.regex.MatchString(fieldValue)
	case "^": // Starts with
		return strings.HasPrefix(fieldValue, wc.Value)
	case "$": // Ends with
		return strings.HasSuffix(fieldValue, wc.Value)
	case ">=":
		return ev.Line >= wc.line
	case "<=":
		return ev.Line <= wc.line
	}

	return false
}

// getFieldValue extracts the field value from an event
func (wc *WhereClause) getFieldValue(ev *domain.EventRecord) string {
	switch wc.Field {
	case "kind":
		return ev.Kind
	case "function":
		return ev.Function
	case "file":
		return ev.File
	case "line":
		return strconv.Itoa(ev.Line)
	case "description":
		return ev.Description
	default:
		return ""
	}
}

// WhereFilter is a filter that applies multiple where clauses (AND logic)
type WhereFilter struct {
	clauses []*WhereClause
}

// NewWhereFilter creates a filter from multiple where clause strings
func NewWhereFilter(whereClauses []string) (*WhereFilter, error) {
	if len(whereClauses) == 0 {
		return nil, nil
	}

	filter := &WhereFilter{}
	for _, clause := range whereClauses {
		wc, err := ParseWhereClause(clause)
		if err != nil {
			return nil, err
		}
		filter.clauses = append(filter.clauses, wc)
	}

	return filter, nil
}

// Match returns true if the event matches ALL where clauses (AND logic)
func (f *WhereFilter) Match(ev *domain.EventRecord) bool {
	if f == nil {
		return true
	}
	for _, clause := range f.clauses {
		if !clause.Match(ev) {
			return false
		}
	}
	return true
}
