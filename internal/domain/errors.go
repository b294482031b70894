package domain

import (
	"fmt"
	"strings"
)

// FieldError describes one schema violation on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated field of a candidate event.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError signals a missing event or plugin id.
type NotFoundError struct {
	Kind string // "event" | "plugin"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// PluginExecutionError carries the exit status and captured error output
// of a failed plugin subprocess.
type PluginExecutionError struct {
	PluginID string
	ExitCode int
	Stderr   string
}

func (e *PluginExecutionError) Error() string {
	return fmt.Sprintf("plugin %s exited with code %d: %s", e.PluginID, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// ResolutionError signals that a life:// URI could not be resolved
// externally or locally.
type ResolutionError struct {
	URI string
	Err error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %s: %v", e.URI, e.Err)
	}
	return fmt.Sprintf("cannot resolve %s", e.URI)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// StorageError wraps an underlying persistence failure. Fatal to the
// in-flight request, never to the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
