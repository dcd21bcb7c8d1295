package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "loresync-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// testDocument builds a document with the given URL and content.
func testDocument(url, content string) *domain.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Document{
		URL:         url,
		Title:       "Test Document",
		Content:     content,
		ContentHash: domain.HashContent([]byte(content)),
		Embedding:   []float32{0.25, -0.5, 1.0},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "loresync-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "lore.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "loresync-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.DocumentStore().UpsertDocument(context.Background(), testDocument("gdrive://files/a", "body")))
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.DocumentStore().CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "reopening must keep existing rows")
}

// ==================== Document Store Tests ====================

func TestDocumentStore_UpsertAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	doc := testDocument("gdrive://files/abc123", "The red dragon sleeps under the mountain.")
	require.NoError(t, docs.UpsertDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "gdrive://files/abc123")
	require.NoError(t, err)
	assert.Equal(t, doc.URL, got.URL)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Embedding, got.Embedding)
	assert.WithinDuration(t, doc.CreatedAt, got.CreatedAt, time.Second)
	assert.WithinDuration(t, doc.UpdatedAt, got.UpdatedAt, time.Second)
}

func TestDocumentStore_UpsertSameURLTwice(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	first := testDocument("gdrive://files/abc123", "original content")
	require.NoError(t, docs.UpsertDocument(ctx, first))

	second := testDocument("gdrive://files/abc123", "revised content")
	second.Title = "Revised"
	second.Embedding = []float32{9, 9, 9}
	require.NoError(t, docs.UpsertDocument(ctx, second))

	count, err := docs.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert must never create a duplicate row")

	got, err := docs.GetDocument(ctx, "gdrive://files/abc123")
	require.NoError(t, err)
	assert.Equal(t, "revised content", got.Content)
	assert.Equal(t, "Revised", got.Title)
	assert.Equal(t, []float32{9, 9, 9}, got.Embedding)
	assert.Equal(t, second.ContentHash, got.ContentHash)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	doc, err := store.DocumentStore().GetDocument(context.Background(), "gdrive://files/nope")

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	assert.ErrorIs(t, docs.UpsertDocument(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, docs.UpsertDocument(ctx, &domain.Document{}), domain.ErrInvalidInput)
}

func TestDocumentStore_ListAndCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	count, err := docs.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	list, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, url := range []string{"gdrive://files/a", "gdrive://files/b", "gdrive://files/c"} {
		require.NoError(t, docs.UpsertDocument(ctx, testDocument(url, "content of "+url)))
	}

	count, err = docs.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err = docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	urls := make(map[string]bool)
	for _, d := range list {
		urls[d.URL] = true
	}
	assert.True(t, urls["gdrive://files/a"])
	assert.True(t, urls["gdrive://files/b"])
	assert.True(t, urls["gdrive://files/c"])
}

func TestDocumentStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.UpsertDocument(ctx, testDocument("gdrive://files/x", "content")))
	require.NoError(t, docs.DeleteDocument(ctx, "gdrive://files/x"))

	_, err := docs.GetDocument(ctx, "gdrive://files/x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing document is not an error
	assert.NoError(t, docs.DeleteDocument(ctx, "gdrive://files/x"))
}

func TestDocumentStore_NilEmbedding(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	doc := testDocument("gdrive://files/noembed", "content")
	doc.Embedding = nil
	require.NoError(t, docs.UpsertDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "gdrive://files/noembed")
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

// ==================== Helper Tests ====================

func TestFloat32SliceRoundTrip(t *testing.T) {
	t.Run("round-trips values exactly", func(t *testing.T) {
		in := []float32{0.1, -2.5, 3.14159, 0, 1e-7}

		out := bytesToFloat32Slice(float32SliceToBytes(in))

		assert.Equal(t, in, out)
	})

	t.Run("empty slices map to nil", func(t *testing.T) {
		assert.Nil(t, float32SliceToBytes(nil))
		assert.Nil(t, float32SliceToBytes([]float32{}))
		assert.Nil(t, bytesToFloat32Slice(nil))
		assert.Nil(t, bytesToFloat32Slice([]byte{}))
	})
}
