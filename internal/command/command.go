// Package command parses the tokens typed at the debugger prompt
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Action is a tagged debugger command
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionStep
	ActionNext
	ActionReturn
	ActionToggleVars
	ActionWatch
	ActionUnwatch
	ActionJump
)

var actionNames = map[Action]string{
	ActionNone:       "none",
	ActionQuit:       "quit",
	ActionStep:       "step",
	ActionNext:       "next",
	ActionReturn:     "return",
	ActionToggleVars: "vars",
	ActionWatch:      "watch",
	ActionUnwatch:    "unwatch",
	ActionJump:       "jump",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Resumes reports whether the action hands control back to the trace source
func (a Action) Resumes() bool {
	switch a {
	case ActionQuit, ActionStep, ActionNext, ActionReturn:
		return true
	}
	return false
}

// Prompt returns the follow-up question an action asks, if any
func (a Action) Prompt() string {
	switch a {
	case ActionWatch, ActionUnwatch:
		return " (enter variable name) "
	case ActionJump:
		return " (enter line) "
	}
	return ""
}

// table maps every accepted token to its action; empty means next
var table = map[string]Action{
	"":        ActionNext,
	"n":       ActionNext,
	"next":    ActionNext,
	"s":       ActionStep,
	"step":    ActionStep,
	"r":       ActionReturn,
	"return":  ActionReturn,
	"v":       ActionToggleVars,
	"vars":    ActionToggleVars,
	"w":       ActionWatch,
	"watch":   ActionWatch,
	"u":       ActionUnwatch,
	"unwatch": ActionUnwatch,
	"j":       ActionJump,
	"jump":    ActionJump,
	"q":       ActionQuit,
	"quit":    ActionQuit,
}

// ErrUnknownCommand is matched by every UnknownCommandError
var ErrUnknownCommand = errors.New("unknown command")

// UnknownCommandError reports a token that is not in the command table
type UnknownCommandError struct {
	Token string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Token)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// Parse resolves the token typed at the prompt
func Parse(input string) (Action, error) {
	token := strings.ToLower(strings.TrimSpace(input))
	if action, ok := table[token]; ok {
		return action, nil
	}
	return ActionNone, &UnknownCommandError{Token: token}
}

// Tokens returns the accepted tokens for action, shortest first
func Tokens(action Action) []string {
	var tokens []string
	for token, a := range table {
		if a == action {
			tokens = append(tokens, token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) < len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}
