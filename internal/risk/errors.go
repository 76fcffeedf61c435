package risk

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CodeInvalidParameter     ErrorCode = "INVALID_PARAMETER"
	CodeMissingInput         ErrorCode = "MISSING_INPUT"
	CodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	CodeIncompleteResolution ErrorCode = "INCOMPLETE_RESOLUTION"
	CodeConcurrentModified   ErrorCode = "CONCURRENT_MODIFICATION"
	CodeNotFound             ErrorCode = "NOT_FOUND"
)

// Sentinels for errors.Is; the concrete types below match them through Is.
var (
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrMissingInput         = errors.New("missing input")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrIncompleteResolution = errors.New("incomplete resolution")
	ErrConcurrentModified   = errors.New("concurrent modification")
	ErrNotFound             = errors.New("not found")
)

// InvalidParameterError: an ordinal label outside the scale.
type InvalidParameterError struct {
	Field string
	Value string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter %s", e.Value, e.Field)
}
func (e *InvalidParameterError) Code() ErrorCode      { return CodeInvalidParameter }
func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// MissingInputError lists every absent flag or parameter.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	return "missing required input: " + strings.Join(e.Fields, ", ")
}
func (e *MissingInputError) Code() ErrorCode      { return CodeMissingInput }
func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
func (e *InvalidTransitionError) Code() ErrorCode      { return CodeInvalidTransition }
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type IncompleteResolutionError struct {
	EventID string
}

func (e *IncompleteResolutionError) Error() string {
	return fmt.Sprintf("event %s cannot be resolved without a resolution note", e.EventID)
}
func (e *IncompleteResolutionError) Code() ErrorCode      { return CodeIncompleteResolution }
func (e *IncompleteResolutionError) Is(target error) bool { return target == ErrIncompleteResolution }

// ConcurrentModificationError: the caller's view is stale, re-read and retry.
type ConcurrentModificationError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

func (e *ConcurrentModificationError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("%s %s was modified concurrently (expected %s)", e.Entity, e.ID, e.Expected)
	}
	return fmt.Sprintf("%s %s was modified concurrently (expected %s, found %s)", e.Entity, e.ID, e.Expected, e.Actual)
}
func (e *ConcurrentModificationError) Code() ErrorCode      { return CodeConcurrentModified }
func (e *ConcurrentModificationError) Is(target error) bool { return target == ErrConcurrentModified }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
func (e *NotFoundError) Code() ErrorCode      { return CodeNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CodeOf returns the code of a taxonomy error anywhere in the chain.
func CodeOf(err error) (ErrorCode, bool) {
	var coded interface{ Code() ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code(), true
	}
	return "", false
}
