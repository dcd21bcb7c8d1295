package domain

import "strings"

// canonicalScheme prefixes the canonical document URL form.
const canonicalScheme = "gdrive://files/"

// CanonicalURL returns the canonical document URL for a remote file ID.
func CanonicalURL(fileID string) string {
	return canonicalScheme + fileID
}

// DocumentKey derives the index key for a document URL.
//
// Stored documents have accumulated URLs in several historical shapes for the
// same underlying file. All of them must collapse to one key so a file already
// ingested under an old URL form is not treated as new:
//
//	gdrive://files/<id>
//	https://drive.google.com/file/d/<id>/view
//	https://drive.google.com/open?id=<id>
//	https://docs.google.com/document/d/<id>/edit
//
// URLs that carry no recognisable file ID key as themselves.
func DocumentKey(url string) string {
	if id := extractFileID(url); id != "" {
		return canonicalScheme + id
	}
	return url
}

// extractFileID pulls the remote file ID out of a known URL form.
// Returns "" when the URL does not match any known shape.
func extractFileID(url string) string {
	if rest, ok := strings.CutPrefix(url, canonicalScheme); ok {
		return trimIDTail(rest)
	}

	// https://drive.google.com/open?id=<id>
	if strings.HasPrefix(url, "https://drive.google.com/open") {
		if _, query, ok := strings.Cut(url, "id="); ok {
			return trimIDTail(query)
		}
		return ""
	}

	// https://drive.google.com/file/d/<id>/view
	// https://docs.google.com/document/d/<id>/edit
	if strings.HasPrefix(url, "https://drive.google.com/") || strings.HasPrefix(url, "https://docs.google.com/") {
		if _, rest, ok := strings.Cut(url, "/d/"); ok {
			return trimIDTail(rest)
		}
	}

	return ""
}

// trimIDTail cuts an extracted ID at the first path, query or fragment boundary.
func trimIDTail(id string) string {
	if i := strings.IndexAny(id, "/?&#"); i >= 0 {
		id = id[:i]
	}
	return id
}
