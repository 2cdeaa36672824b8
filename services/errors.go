package services

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestNotFound indicates the referenced DSAR request does not exist
	ErrRequestNotFound = errors.New("dsar request not found")
	// ErrUserNotFound indicates the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrHoldNotFound indicates the referenced legal hold does not exist
	ErrHoldNotFound = errors.New("legal hold not found")
	// ErrExportLinkExpired indicates the export download window has passed
	ErrExportLinkExpired = errors.New("export link expired")
)

// ValidationError indicates malformed input the caller must correct; retrying
// without changes will not succeed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// LegalHoldBlockedError indicates a deletion request was rejected because an
// active legal hold names the subject. This is a terminal rejection, not a
// transient failure.
type LegalHoldBlockedError struct {
	HoldID string
}

func (e *LegalHoldBlockedError) Error() string {
	return "deletion blocked by active legal hold " + e.HoldID
}

// TransactionFailure indicates the ordered deletion mutation failed and was
// rolled back. The request stays IN_PROGRESS and is safe to retry.
type TransactionFailure struct {
	Step string
	Err  error
}

func (e *TransactionFailure) Error() string {
	return fmt.Sprintf("deletion transaction failed at %q: %v", e.Step, e.Err)
}

func (e *TransactionFailure) Unwrap() error { return e.Err }

// PublishFailure indicates the export bundle could not be stored or
// published. The request stays IN_PROGRESS and no export URL is persisted.
type PublishFailure struct {
	Err error
}

func (e *PublishFailure) Error() string {
	return fmt.Sprintf("export publish failed: %v", e.Err)
}

func (e *PublishFailure) Unwrap() error { return e.Err }
