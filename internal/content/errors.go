package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a document or detail page does not exist.
	ErrNotFound = errors.New("content: not found")
	// ErrNotLoaded wraps every failure to fetch, decode, or validate a document.
	ErrNotLoaded = errors.New("content: not loaded")
)

// ValidationError lists the fields of a document that failed schema checks.
type ValidationError struct {
	Path   string
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content: %s failed validation [%s]", e.Path, strings.Join(e.fields, "; "))
}

// Fields returns the offending fields with their reasons.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

type validation struct {
	path   string
	fields []string
}

func newValidation(path string) *validation {
	return &validation{path: path}
}

func (v *validation) add(field, reason string) {
	v.fields = append(v.fields, field+": "+reason)
}

func (v *validation) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

func (v *validation) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Path: v.path, fields: v.fields}
}
