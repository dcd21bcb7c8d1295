package driving

import (
	"context"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// SyncService runs lore synchronisation against the remote folder tree.
type SyncService interface {
	// Run executes one chunked sync run and returns its report.
	// Only one run may be active at a time; a second concurrent call
	// fails with domain.ErrSyncInProgress.
	Run(ctx context.Context, opts RunOptions) (*SyncReport, error)

	// Status reports whether a run is active plus store-level counts.
	Status(ctx context.Context) (*SyncStatus, error)
}

// RunOptions are the per-run inputs callers may override.
// Everything else comes from configuration.
type RunOptions struct {
	// Mode selects candidate classification behaviour.
	Mode domain.SyncMode

	// MaxFiles caps candidates attempted this run. Zero means the mode default.
	MaxFiles int
}

// SyncStatus is the current state of the sync service.
type SyncStatus struct {
	// Running indicates a run is in progress.
	Running bool

	// DocumentCount is the number of documents in the store.
	DocumentCount int

	// LastReport is the most recent completed run in this process, if any.
	LastReport *SyncReport
}

// SyncReport is the wire-level outcome of one run.
// Field names are the portal's API contract; both the HTTP adapter and the
// CLI --json flag serialise it as-is.
type SyncReport struct {
	// Success is false only for run-level failures; per-file failures are
	// reported in the counters with Success still true.
	Success bool `json:"success"`

	// PagesScraped counts documents ingested this run (new plus updated).
	PagesScraped int `json:"pagesScraped"`

	// PagesSkipped counts files resolved without ingestion.
	PagesSkipped int `json:"pagesSkipped"`

	// TotalDiscovered counts matching files seen in the remote tree.
	TotalDiscovered int `json:"totalDiscovered"`

	// TotalInDatabase is the store's document count when the run began.
	TotalInDatabase int `json:"totalInDatabase"`

	// NewFiles counts files absent from the known index.
	NewFiles int `json:"newFiles"`

	// UpdatedFiles counts re-ingested files whose hash changed.
	UpdatedFiles int `json:"updatedFiles"`

	// UnchangedFiles counts known files resolved without re-ingesting.
	UnchangedFiles int `json:"unchangedFiles"`

	// MissingFiles mirrors NewFiles for missing-only runs.
	MissingFiles int `json:"missingFiles,omitempty"`

	// FilesProcessedThisRun counts candidates attempted.
	FilesProcessedThisRun int `json:"filesProcessedThisRun"`

	// FilesRemainingForNextRun counts candidates left for a follow-up run.
	FilesRemainingForNextRun int `json:"filesRemainingForNextRun"`

	// ProgressPercentage is attempted over candidates, 0-100.
	ProgressPercentage int `json:"progressPercentage"`

	// RateLimitErrors counts throttle responses observed.
	RateLimitErrors int `json:"rateLimitErrors"`

	// APIRequestsMade and MaxAPIRequests expose budget consumption.
	APIRequestsMade int `json:"apiRequestsMade"`
	MaxAPIRequests  int `json:"maxApiRequests"`

	// Errors holds up to domain.MaxRunErrors failure messages.
	Errors []string `json:"errors"`

	// Statistics groups per-phase detail.
	Statistics RunStatistics `json:"statistics"`

	// Message is a one-line human summary.
	Message string `json:"message"`

	// RunID identifies the run in logs and task history.
	RunID string `json:"runId"`

	// Mode is the mode the run executed with.
	Mode string `json:"mode"`
}

// RunStatistics groups per-phase run detail.
type RunStatistics struct {
	Discovery  DiscoveryStatistics  `json:"discovery"`
	Processing ProcessingStatistics `json:"processing"`
	Completion CompletionStatistics `json:"completion"`
}

// DiscoveryStatistics describes the folder walk and classification.
type DiscoveryStatistics struct {
	// FoldersWalked counts folders listed, including the root.
	FoldersWalked int `json:"foldersWalked"`

	// FilesSeen counts every file encountered, matching or not.
	FilesSeen int `json:"filesSeen"`

	// FilesMatched counts files with the expected extension.
	FilesMatched int `json:"filesMatched"`

	// New and PotentiallyUpdated are the candidate classes.
	New                int `json:"new"`
	PotentiallyUpdated int `json:"potentiallyUpdated"`

	// ExcludedUnchanged counts known files the mode excluded without download.
	ExcludedUnchanged int `json:"excludedUnchanged"`

	// ListingFailures counts subfolders skipped because their listing failed.
	ListingFailures int `json:"listingFailures"`
}

// ProcessingStatistics describes the download-and-ingest phase.
type ProcessingStatistics struct {
	// Attempted counts candidates the run tried to process.
	Attempted int `json:"attempted"`

	// Ingested counts successful upserts.
	Ingested int `json:"ingested"`

	// SkippedUnchanged counts downloads whose hash matched the stored value.
	SkippedUnchanged int `json:"skippedUnchanged"`

	// Embedded counts embedding vectors produced.
	Embedded int `json:"embedded"`

	// Failed counts per-file failures.
	Failed int `json:"failed"`

	// TooShort counts failures from the minimum-length gate.
	TooShort int `json:"tooShort"`
}

// CompletionStatistics describes how the run ended.
type CompletionStatistics struct {
	// Phase is the stage the run reached.
	Phase string `json:"phase"`

	// EarlyExit is set when the budget threshold stopped processing.
	EarlyExit bool `json:"earlyExit"`

	// APIBudgetUsedPercent is requests made over the budget, 0-100.
	APIBudgetUsedPercent int `json:"apiBudgetUsedPercent"`

	// DurationMS is the wall-clock run duration in milliseconds.
	DurationMS int64 `json:"durationMs"`

	// ErrorKinds counts per-file failures by diagnostic kind.
	ErrorKinds map[string]int `json:"errorKinds,omitempty"`
}
