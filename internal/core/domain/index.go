package domain

import "time"

// IndexEntry is the per-document state the classifier compares against.
type IndexEntry struct {
	// URL is the stored document URL, in whatever form it was ingested under.
	URL string

	// ContentHash is the stored raw-content digest.
	ContentHash string

	// UpdatedAt is when the document was last ingested.
	UpdatedAt time.Time
}

// KnownIndex maps document keys to stored document state.
// It is built once at the start of a run and read-only thereafter; documents
// ingested mid-run are deliberately not added back.
type KnownIndex map[string]IndexEntry

// BuildKnownIndex builds the index from stored documents.
// Historical URL forms of the same file collapse onto one key.
func BuildKnownIndex(docs []Document) KnownIndex {
	idx := make(KnownIndex, len(docs))
	for _, doc := range docs {
		idx[DocumentKey(doc.URL)] = IndexEntry{
			URL:         doc.URL,
			ContentHash: doc.ContentHash,
			UpdatedAt:   doc.UpdatedAt,
		}
	}
	return idx
}

// Lookup returns the stored entry for a remote file, if any.
func (idx KnownIndex) Lookup(f RemoteFile) (IndexEntry, bool) {
	entry, ok := idx[DocumentKey(f.URI())]
	return entry, ok
}
