package entity

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the closed set of error categories produced by the
// replication pipeline. The taxonomy mirrors the one the teacher pipeline
// domain used (internal/domain/pipeline/errors.go) but is remapped onto the
// vocabulary this domain needs.
type ErrorKind string

const (
	ErrInvalidInput       ErrorKind = "invalid_input"
	ErrNotFound           ErrorKind = "not_found"
	ErrTransport          ErrorKind = "transport"
	ErrRateLimit          ErrorKind = "rate_limit"
	ErrDuplicateName      ErrorKind = "duplicate_name"
	ErrAnalysisFailed     ErrorKind = "analysis_failed"
	ErrCircularDependency ErrorKind = "circular_dependency"
	ErrMissingDependency  ErrorKind = "missing_dependency"
	ErrCreationFailed     ErrorKind = "creation_failed"
	ErrValidationFailed   ErrorKind = "validation_failed"
	ErrWorkflowAborted    ErrorKind = "workflow_aborted"
	ErrStateInvalid       ErrorKind = "state_invalid"
	ErrUnknown            ErrorKind = "unknown"
)

// ReplicationError is a typed, context-carrying error shared by every
// component in the pipeline. It mirrors the teacher's DomainError: a closed
// error-kind enum, an originating component name, a recoverability flag and
// optional structured details.
type ReplicationError struct {
	Kind        ErrorKind
	Component   string
	Message     string
	Cause       error
	Recoverable bool
	Details     map[string]interface{}
}

func (e *ReplicationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Component, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Component, e.Kind, e.Message)
}

func (e *ReplicationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is comparisons keyed on kind + message, matching the
// teacher DomainError.Is semantics.
func (e *ReplicationError) Is(target error) bool {
	var other *ReplicationError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Message == other.Message
}

// WithDetails returns a copy of the error with additional structured context
// merged in.
func (e *ReplicationError) WithDetails(details map[string]interface{}) *ReplicationError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ReplicationError{
		Kind:        e.Kind,
		Component:   e.Component,
		Message:     e.Message,
		Cause:       e.Cause,
		Recoverable: e.Recoverable,
		Details:     merged,
	}
}

// NewError constructs a ReplicationError. Unrecoverable by default; callers
// opt into recoverable via WithRecoverable.
func NewError(component string, kind ErrorKind, message string, cause error) *ReplicationError {
	return &ReplicationError{Component: component, Kind: kind, Message: message, Cause: cause}
}

// WithRecoverable marks the error recoverable (e.g. a single SKIP/CREATE
// conflict that does not abort the run) and returns the same error for
// chaining.
func (e *ReplicationError) WithRecoverable(recoverable bool) *ReplicationError {
	if e == nil {
		return nil
	}
	e.Recoverable = recoverable
	return e
}
