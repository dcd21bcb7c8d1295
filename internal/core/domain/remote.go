package domain

import "time"

// RemoteFile represents a file discovered in the remote lore folder tree.
// It carries listing metadata only; content is downloaded separately.
type RemoteFile struct {
	// ID is the remote store's file identifier.
	ID string

	// Name is the file name including extension.
	Name string

	// FolderPath is the path of folder names from the root, "/"-separated.
	FolderPath string

	// Size is the file size in bytes as reported by the listing.
	Size int64

	// ModifiedTime is the remote last-modified timestamp.
	ModifiedTime time.Time

	// WebViewLink is the browser URL for the file, when the listing provides one.
	WebViewLink string
}

// URI returns the canonical document URL for this file.
func (f RemoteFile) URI() string {
	return CanonicalURL(f.ID)
}

// Path joins the walk path and file name for logs and diagnostics.
func (f RemoteFile) Path() string {
	if f.FolderPath == "" {
		return f.Name
	}
	return f.FolderPath + "/" + f.Name
}

// RemoteFolder is a folder discovered in the remote lore tree.
type RemoteFolder struct {
	// ID is the remote store's folder identifier.
	ID string

	// Name is the folder name.
	Name string
}

// ChangeClass categorises a discovered file against the known index.
type ChangeClass int

const (
	// ClassNew indicates a file absent from the known index.
	ClassNew ChangeClass = iota

	// ClassPotentiallyUpdated indicates a known file whose content must be
	// re-checked by hash comparison.
	ClassPotentiallyUpdated

	// ClassUnchanged indicates a known file excluded from processing by the
	// run mode, without downloading.
	ClassUnchanged

	// ClassSkip indicates a file that is not lore content (extension mismatch).
	ClassSkip
)

// String returns the class name for logs and stats.
func (c ChangeClass) String() string {
	switch c {
	case ClassNew:
		return "new"
	case ClassPotentiallyUpdated:
		return "potentially-updated"
	case ClassUnchanged:
		return "unchanged"
	case ClassSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Candidate is a remote file selected for processing, with its classification.
type Candidate struct {
	// File is the discovered remote file.
	File RemoteFile

	// Class is ClassNew or ClassPotentiallyUpdated; other classes never
	// become candidates.
	Class ChangeClass
}
