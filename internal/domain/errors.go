package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound signals a missing resource or one owned by another exhibit.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals a concurrent modification detected by the store.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable signals a failing or unreachable document index.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// KeyPrefix namespaces every key vitrine writes to Redis/Valkey.
const KeyPrefix = "vitrine:"

// ValidationError carries per-field messages and wraps ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Prefixed returns a copy with every field name prefixed, e.g. "searches.<id>.title".
func (e *ValidationError) Prefixed(prefix string) *ValidationError {
	out := &ValidationError{Fields: make(map[string]string, len(e.Fields))}
	for k, v := range e.Fields {
		out.Fields[prefix+"."+k] = v
	}
	return out
}
