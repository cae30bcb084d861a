package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input that was refused before any write happened.
	ErrValidation = errors.New("validation failed")
)

// Problem describes one rejected field. Index is -1 when the problem is not tied to an option position.
type Problem struct {
	Field   string `json:"field"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in one pass so the caller can fix them together.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Index >= 0 {
			parts = append(parts, fmt.Sprintf("%s[%d]: %s", p.Field, p.Index, p.Message))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Message))
		}
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a problem.
func (e *ValidationError) Add(field string, index int, message string) {
	e.Problems = append(e.Problems, Problem{Field: field, Index: index, Message: message})
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}
