package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingConfig indicates required configuration is absent.
	// A run cannot start without it.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrSyncInProgress indicates a sync run is already active.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrCallBudgetExceeded indicates the per-run API call budget is spent.
	// The run stops processing; already-completed work is kept.
	ErrCallBudgetExceeded = errors.New("api call budget exceeded")

	// ErrThrottled indicates the remote store rejected a request for rate
	// or quota reasons and retries were exhausted.
	ErrThrottled = errors.New("remote store throttled request")

	// ErrContentTooShort indicates normalised content fell below the
	// minimum length. The file is skipped, not ingested.
	ErrContentTooShort = errors.New("normalised content too short")

	// ErrFileTooLarge indicates a remote file exceeds the download cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmbeddingUnavailable indicates the embedding service rejected or
	// could not serve a request. The document is not ingested.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ErrorKind categorises a per-file failure for operator diagnostics.
// Kinds are assigned where the failure happens, never recovered from
// message text.
type ErrorKind string

const (
	// KindRateLimit marks throttling by the remote store or embedding API.
	KindRateLimit ErrorKind = "rate_limit"

	// KindPermission marks authentication and authorisation failures.
	KindPermission ErrorKind = "permission"

	// KindNetwork marks transport-level failures.
	KindNetwork ErrorKind = "network"

	// KindQuota marks remote quota exhaustion distinct from rate limiting.
	KindQuota ErrorKind = "quota"

	// KindFileSize marks files rejected for exceeding the download cap.
	KindFileSize ErrorKind = "file_size"

	// KindOther marks everything else.
	KindOther ErrorKind = "other"
)

// SyncError is a per-file failure with its diagnostic kind attached.
type SyncError struct {
	// Kind is the diagnostic category, set at the point of failure.
	Kind ErrorKind

	// Path identifies the file, folder path plus name when known.
	Path string

	// Err is the underlying cause.
	Err error
}

// NewSyncError wraps a cause with its kind and file path.
func NewSyncError(kind ErrorKind, path string, err error) *SyncError {
	return &SyncError{Kind: kind, Path: path, Err: err}
}

func (e *SyncError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// KindOf returns the diagnostic kind of an error.
// Errors without an attached kind report KindOther.
func KindOf(err error) ErrorKind {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return KindOther
}

// IsThrottled checks if the error indicates remote throttling.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsBudgetExceeded checks if the error indicates the call budget is spent.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrCallBudgetExceeded)
}
