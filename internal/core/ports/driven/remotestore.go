package driven

import (
	"context"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// FolderListing is the immediate contents of one remote folder.
type FolderListing struct {
	// Files are the non-folder children, in the order the store returned them.
	Files []domain.RemoteFile

	// Folders are the child folders to walk into.
	Folders []domain.RemoteFolder
}

// RemoteStore lists and downloads lore files from the remote folder tree.
// Every call consumes the run's API budget; implementations pace requests
// and return domain.ErrCallBudgetExceeded once the budget is spent.
type RemoteStore interface {
	// ListFolder returns the immediate children of a folder.
	ListFolder(ctx context.Context, folderID string) (*FolderListing, error)

	// Download fetches the raw bytes of a file.
	// Files over the download cap fail with domain.ErrFileTooLarge without
	// consuming budget.
	Download(ctx context.Context, file domain.RemoteFile) ([]byte, error)

	// RequestsMade reports API requests consumed so far this run.
	RequestsMade() int

	// RateLimitEvents reports throttle responses observed so far this run.
	RateLimitEvents() int

	// Close releases resources.
	Close() error
}

// RemoteStoreFactory opens a RemoteStore for one run.
// Pacing state and the call budget are run-scoped, so each run gets a
// fresh store.
type RemoteStoreFactory interface {
	// Open creates a RemoteStore configured for the run.
	Open(ctx context.Context, cfg domain.RunConfig) (RemoteStore, error)
}
