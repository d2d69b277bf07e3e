package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Connector and sink errors are wrapped around these so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed configuration or input.
	// Fatal: the run never starts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEnumeration indicates the source of items could not be listed.
	// Fatal: no bucket is processed.
	ErrEnumeration = errors.New("enumeration failed")

	// ErrPermanent indicates a non-recoverable failure for a single item.
	ErrPermanent = errors.New("permanent fetch failure")

	// ErrRetriesExhausted indicates every attempt for an item failed transiently.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrWriteFailed indicates an artifact could not be persisted.
	// The bucket is aborted but later buckets are still attempted.
	ErrWriteFailed = errors.New("write failed")

	// ErrDestinationUnusable indicates the output location itself is unusable.
	// The whole run halts.
	ErrDestinationUnusable = errors.New("destination unusable")

	// ErrCancelled indicates the run was stopped by its context.
	ErrCancelled = errors.New("run cancelled")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates a connector requires credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// TransientError marks an error as recoverable.
// The fetcher retries items that fail with a TransientError.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err so that IsTransient reports true.
// A nil error stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return err
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is worth retrying.
// Rate limiting is always treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, ErrRateLimited)
}

// Phase names a pipeline state for error reporting.
type Phase string

// Pipeline phases in the order a run moves through them.
const (
	PhaseConfiguring  Phase = "configuring"
	PhaseEnumerating  Phase = "enumerating"
	PhasePartitioning Phase = "partitioning"
	PhaseProcessing   Phase = "processing"
)

// PhaseError carries enough context to diagnose a fatal failure:
// the phase it happened in and, when relevant, the bucket and item involved.
type PhaseError struct {
	Phase  Phase
	Bucket int
	Item   string
	Err    error
}

func (e *PhaseError) Error() string {
	switch {
	case e.Item != "":
		return fmt.Sprintf("%s bucket %d item %s: %v", e.Phase, e.Bucket, e.Item, e.Err)
	case e.Bucket > 0:
		return fmt.Sprintf("%s bucket %d: %v", e.Phase, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
