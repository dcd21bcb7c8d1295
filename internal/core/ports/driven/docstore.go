package driven

import (
	"context"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// DocumentStore persists ingested lore documents.
// Backed by SQLite for the portal's knowledge base.
type DocumentStore interface {
	// UpsertDocument stores a document, updating in place when the URL
	// already exists. Re-ingesting the same URL never creates a duplicate.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by URL.
	GetDocument(ctx context.Context, url string) (*domain.Document, error)

	// ListDocuments returns all stored documents.
	// The known index for a run is built from this snapshot.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// DeleteDocument removes a document by URL.
	DeleteDocument(ctx context.Context, url string) error
}
