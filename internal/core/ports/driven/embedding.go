package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The sync pipeline embeds one document at a time, in discovery order, so
// there is no batch call. Implementations pace their own requests.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Compatible APIs behind a custom base URL
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Failures carry a domain.ErrorKind assigned from the HTTP status.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// Used at startup to verify connectivity before the first run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
