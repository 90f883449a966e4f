package domain

import "errors"

// Sentinel errors for the vault core - use with errors.Is()
var (
	// ErrValidation indicates malformed input (empty name, missing
	// destination). Rejected before any network call.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTarget indicates a move that would create a cycle or
	// whose target equals the source. Rejected before dispatch.
	ErrInvalidTarget = errors.New("invalid move target")

	// ErrNotFound indicates the referenced folder or document no longer
	// exists server-side. Callers should refetch to resync the cache.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a name collision in the destination folder.
	ErrConflict = errors.New("already exists")

	// ErrTransferFailure indicates the direct byte transfer to the object
	// store failed. The upload is treated as not-started for retry.
	ErrTransferFailure = errors.New("transfer failed")

	// ErrCommitFailure indicates the metadata write failed after a
	// successful transfer. Retry the commit, do not re-upload.
	ErrCommitFailure = errors.New("commit failed")

	// ErrUnauthorized indicates an invalid credential or session. It is
	// escalated to the session layer, never recovered here.
	ErrUnauthorized = errors.New("unauthorized")
)

// Domain error types carrying detail beyond the sentinel
type (
	// NotFoundError identifies which resource disappeared server-side.
	NotFoundError struct {
		ResourceType string // "folder" or "document"
		ResourceID   int64
		Message      string
	}

	// ValidationError carries the field-level validation message.
	ValidationError struct {
		Message string
	}

	// RemoteError is a non-success envelope from the external store.
	RemoteError struct {
		Status  int
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *RemoteError) Error() string     { return e.Message }

// Is allows errors.Is() to match against the sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
