package memory

import (
	"context"
	"sync"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It backs service tests and ephemeral runs with no data directory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// UpsertDocument stores or updates a document keyed by URL.
// The creation time of an existing row survives updates.
func (s *DocumentStore) UpsertDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.URL == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	stored.Embedding = append([]float32(nil), doc.Embedding...)
	if existing, ok := s.documents[doc.URL]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.documents[doc.URL] = stored
	return nil
}

// GetDocument retrieves a document by URL.
func (s *DocumentStore) GetDocument(_ context.Context, url string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all stored documents in unspecified order.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for url := range s.documents {
		docs = append(docs, s.documents[url])
	}
	return docs, nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentStore) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// DeleteDocument removes a document. Deleting a missing URL is a no-op.
func (s *DocumentStore) DeleteDocument(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, url)
	return nil
}
