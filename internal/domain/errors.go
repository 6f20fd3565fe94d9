package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors shared by services, adapters and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPresentationLocked = errors.New("presentation can no longer be edited")
	ErrInvalidLoginState  = errors.New("invalid login state")
	ErrConflict           = errors.New("already exists")
	ErrUpstream           = errors.New("summit api unavailable")
)

// ValidationError carries field-keyed validation messages, either produced
// locally or returned by the Summit API.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError holding a copy of fields.
func NewValidationError(fields map[string]string) *ValidationError {
	v := &ValidationError{Fields: make(map[string]string, len(fields))}
	for k, msg := range fields {
		v.Fields[k] = msg
	}
	return v
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Merge adds the fields of other that are not already set on e. Existing
// messages win so the first reported error for a field is the one shown.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	if e.Fields == nil {
		e.Fields = make(map[string]string, len(other.Fields))
	}
	for k, msg := range other.Fields {
		if _, ok := e.Fields[k]; !ok {
			e.Fields[k] = msg
		}
	}
	return e
}

// FirstField returns the alphabetically first invalid field, which clients
// scroll to. Empty when there are no fields.
func (e *ValidationError) FirstField() string {
	first := ""
	for k := range e.Fields {
		if first == "" || k < first {
			first = k
		}
	}
	return first
}
