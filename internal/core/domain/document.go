package domain

import "time"

// Document represents an ingested lore document.
// It is the canonical representation after normalisation, keyed by URL.
type Document struct {
	// URL is the canonical document location (gdrive://files/<id>).
	// It is the upsert key: ingesting the same URL twice updates in place.
	URL string

	// Title is the human-readable title derived during normalisation.
	Title string

	// Content is the plain text after normalisation, capped for embedding.
	Content string

	// ContentHash is the hex SHA-256 digest of the raw file bytes.
	// Change detection compares this against the stored value.
	ContentHash string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last ingested.
	UpdatedAt time.Time
}
