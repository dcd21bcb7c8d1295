package domain

import (
	"fmt"
	"time"
)

// SyncMode selects which discovered files become processing candidates.
type SyncMode string

const (
	// ModeFull re-checks every matching file; stored hashes decide skips.
	ModeFull SyncMode = "full"

	// ModeIncremental checks new files plus files modified within the
	// incremental window.
	ModeIncremental SyncMode = "incremental"

	// ModeMissingOnly checks only files absent from the known index.
	ModeMissingOnly SyncMode = "missing-only"
)

// ParseSyncMode validates a mode string from the CLI or API.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case ModeFull, ModeIncremental, ModeMissingOnly:
		return SyncMode(s), nil
	case "":
		return ModeIncremental, nil
	default:
		return "", fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, s)
	}
}

// DefaultMaxFiles returns the per-run candidate cap for a mode.
// Full runs take a smaller batch since every known file is a candidate again.
func (m SyncMode) DefaultMaxFiles() int {
	if m == ModeFull {
		return 25
	}
	return 50
}

// Run defaults shared by config loading and the run controller.
const (
	// DefaultMaxAPICalls caps remote store requests per run.
	DefaultMaxAPICalls = 250

	// DefaultFileExtension selects lore content files in the remote tree.
	DefaultFileExtension = ".md"

	// DefaultIncrementalWindow is how far back incremental mode looks.
	DefaultIncrementalWindow = 7 * 24 * time.Hour

	// DefaultMinContentLength is the minimum normalised length to ingest.
	DefaultMinContentLength = 50

	// DefaultMaxContentChars caps normalised content before embedding.
	DefaultMaxContentChars = 8000

	// MaxRunErrors caps the error messages retained on RunStats.
	MaxRunErrors = 10
)

// RunConfig configures a single sync run.
type RunConfig struct {
	// Mode selects candidate classification behaviour.
	Mode SyncMode

	// RootFolderID is the remote folder the walk starts from.
	RootFolderID string

	// MaxFiles caps candidates attempted this run. Zero means the mode default.
	MaxFiles int

	// MaxAPICalls caps remote store requests this run. Zero means DefaultMaxAPICalls.
	MaxAPICalls int

	// FileExtension selects content files. Zero value means DefaultFileExtension.
	FileExtension string

	// IncrementalWindow bounds incremental mode's modified-time cutoff.
	// Zero means DefaultIncrementalWindow.
	IncrementalWindow time.Duration

	// MinContentLength gates ingestion of short documents.
	// Zero means DefaultMinContentLength.
	MinContentLength int

	// MaxContentChars caps normalised content. Zero means DefaultMaxContentChars.
	MaxContentChars int
}

// MinLength returns the effective minimum normalised content length.
func (c RunConfig) MinLength() int {
	if c.MinContentLength <= 0 {
		return DefaultMinContentLength
	}
	return c.MinContentLength
}

// MaxChars returns the effective normalised content cap.
func (c RunConfig) MaxChars() int {
	if c.MaxContentChars <= 0 {
		return DefaultMaxContentChars
	}
	return c.MaxContentChars
}

// RunPhase labels how far a run got.
type RunPhase string

const (
	// PhaseDiscovery covers the folder walk and classification.
	PhaseDiscovery RunPhase = "discovery"

	// PhaseProcessing covers download, normalise, embed and upsert.
	PhaseProcessing RunPhase = "processing"

	// PhaseComplete means the run finished and stats are final.
	PhaseComplete RunPhase = "complete"
)

// RunStats accumulates the outcome of one sync run.
// The run controller owns it; adapters read it only after the run returns.
type RunStats struct {
	// RunID uniquely identifies this run.
	RunID string

	// Mode is the mode the run executed with.
	Mode SyncMode

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time
	EndedAt   time.Time

	// Phase is the stage the run reached.
	Phase RunPhase

	// EarlyExit is set when the call budget threshold stopped processing.
	EarlyExit bool

	// Discovery outcome.

	// TotalDiscovered counts extension-matching files seen in the walk.
	TotalDiscovered int

	// Candidates counts files selected for processing, before truncation.
	Candidates int

	// KnownAtStart is the document count in the store when the run began.
	KnownAtStart int

	// FoldersWalked counts folders listed, including the root.
	FoldersWalked int

	// FilesSeen counts every file encountered, matching or not.
	FilesSeen int

	// ListingFailures counts subfolders whose listing failed and was skipped.
	ListingFailures int

	// NewFiles counts files classified as absent from the known index.
	NewFiles int

	// PotentiallyUpdated counts known files selected for a hash re-check.
	PotentiallyUpdated int

	// ExcludedUnchanged counts known files the mode excluded without download.
	ExcludedUnchanged int

	// MissingFiles mirrors NewFiles for missing-only runs; zero otherwise.
	MissingFiles int

	// Processing outcome.

	// Attempted counts candidates the run tried to process.
	Attempted int

	// Ingested counts successful upserts (new plus updated).
	Ingested int

	// Embedded counts embedding vectors produced.
	Embedded int

	// UpdatedFiles counts known files re-ingested with a changed hash.
	UpdatedFiles int

	// UnchangedFiles counts known files resolved without re-ingesting:
	// mode-excluded at discovery or hash-equal after download.
	UnchangedFiles int

	// SkippedFiles counts files resolved without ingestion or failure.
	SkippedFiles int

	// FailedFiles counts per-file failures.
	FailedFiles int

	// TooShort counts failures caused by the minimum-length gate.
	TooShort int

	// Request accounting.

	// APIRequestsMade counts remote store requests consumed.
	APIRequestsMade int

	// MaxAPIRequests is the budget the run started with.
	MaxAPIRequests int

	// RateLimitEvents counts throttle responses observed, retried or not.
	RateLimitEvents int

	// ErrorKinds counts per-file failures by diagnostic kind.
	ErrorKinds map[ErrorKind]int

	// Errors holds the first MaxRunErrors failure messages.
	Errors []string
}

// NewRunStats initialises stats for a run.
func NewRunStats(runID string, mode SyncMode, maxAPIRequests int) *RunStats {
	return &RunStats{
		RunID:          runID,
		Mode:           mode,
		StartedAt:      time.Now(),
		Phase:          PhaseDiscovery,
		MaxAPIRequests: maxAPIRequests,
		ErrorKinds:     make(map[ErrorKind]int),
	}
}

// RecordFailure counts a per-file failure and retains its message.
// Messages beyond MaxRunErrors are counted but dropped.
func (s *RunStats) RecordFailure(err error) {
	s.FailedFiles++
	s.ErrorKinds[KindOf(err)]++
	if len(s.Errors) < MaxRunErrors {
		s.Errors = append(s.Errors, err.Error())
	}
}

// Remaining reports candidates left for a follow-up run.
// Every candidate not attempted counts, including those abandoned when the
// call budget stopped the run.
func (s *RunStats) Remaining() int {
	remaining := s.Candidates - s.Attempted
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress reports attempted candidates as a 0-100 percentage.
// A run that found nothing to do is complete.
func (s *RunStats) Progress() int {
	if s.Candidates == 0 {
		return 100
	}
	return (s.Attempted*100 + s.Candidates/2) / s.Candidates
}
