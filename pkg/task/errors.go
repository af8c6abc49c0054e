package task

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every error caused by malformed input.
	ErrFormat = errors.New("malformed task")

	// ErrInvalid is returned when a record does not satisfy the task invariants.
	ErrInvalid = errors.New("invalid task")

	// ErrBodyTooLarge is returned when the body would grow beyond Decoder.MaxBodySize.
	ErrBodyTooLarge = errors.New("task body too large")
)

// FormatError describes malformed input. Line is 1-based, 0 if unknown.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed task: line %d: %s", e.Line, e.Msg)
	}
	return "malformed task: " + e.Msg
}

// Is reports ErrFormat as a match so callers can use errors.Is.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(line int, format string, args ...any) error {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
