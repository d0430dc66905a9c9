// Package errs defines the error taxonomy shared by all job handlers.
// Handlers classify external-capability failures into one of these types
// before returning, so the queue's retry policy can decide whether the
// job is retryable.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError indicates a malformed external-capability response,
// typically an LLM output that does not match its schema. Not retryable.
type ValidationError struct {
	Subject string
	Fields  []FieldError
	Cause   error
}

// FieldError pinpoints a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed for %s: %d field error(s), first: %s: %s",
			e.Subject, len(e.Fields), e.Fields[0].Field, e.Fields[0].Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation failed for %s: %v", e.Subject, e.Cause)
	}
	return fmt.Sprintf("validation failed for %s", e.Subject)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// PreconditionFailed indicates an illegal state transition or a guard
// violation (e.g. scheduling a non-approved asset). Not retryable.
type PreconditionFailed struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *PreconditionFailed) Error() string {
	if e.From != "" || e.To != "" {
		return fmt.Sprintf("precondition failed: %s cannot transition %s -> %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("precondition failed: %s: %s", e.Entity, e.Reason)
}

// TransientProviderError indicates a timeout or rate limit from an external
// capability. Retried with exponential backoff up to the attempt cap.
type TransientProviderError struct {
	Provider string
	Cause    error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("transient provider error from %s: %v", e.Provider, e.Cause)
}

func (e *TransientProviderError) Unwrap() error { return e.Cause }

// ConfigurationError indicates missing operator configuration, e.g. no
// publish connector in production. Fails without retry.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NotFoundError indicates a referenced entity is missing; a stale or
// corrupted reference. Fails without retry.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// PermanentError marks a failure that must not be retried regardless of
// its cause, e.g. an ideation failure that already moved the batch to
// FAILED and requires a manual resubmit.
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent failure: %v", e.Cause)
}

func (e *PermanentError) Unwrap() error { return e.Cause }

// Permanent wraps err so the queue will not retry it. Returns nil for nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Cause: err}
}

// IsRetryable reports whether the queue should retry a job that failed
// with err. Only transient provider errors are retryable; everything in
// the taxonomy else is a hard failure, and unclassified errors are treated
// as transient so at-least-once delivery still applies.
func IsRetryable(err error) bool {
	var ve *ValidationError
	var pf *PreconditionFailed
	var ce *ConfigurationError
	var nf *NotFoundError
	var pe *PermanentError
	if errors.As(err, &ve) || errors.As(err, &pf) || errors.As(err, &ce) || errors.As(err, &nf) || errors.As(err, &pe) {
		return false
	}
	return true
}
