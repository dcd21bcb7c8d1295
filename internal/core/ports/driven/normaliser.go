package driven

// Normaliser strips markup from raw lore content.
// Normalisation is deliberately lossy: hashes are computed on raw bytes
// before it runs, so nothing here affects change detection.
type Normaliser interface {
	// Normalise converts raw markup to plain text with whitespace collapsed.
	Normalise(raw []byte) string

	// DeriveTitle extracts a title from raw content, falling back to a
	// cleaned-up file name.
	DeriveTitle(raw []byte, fileName string) string
}
