package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driven"
	"github.com/tablekeep/loresync/internal/core/ports/driving"
	"github.com/tablekeep/loresync/internal/logger"
)

// Ensure SyncRunner implements the interface.
var _ driving.SyncService = (*SyncRunner)(nil)

// budgetEarlyExitThreshold is the budget fraction past which no further
// candidates are attempted in the current run.
const budgetEarlyExitThreshold = 0.8

// Config tunes the sync runner.
type Config struct {
	// Base is the run configuration template. Mode and MaxFiles are
	// filled per run from the caller's options.
	Base domain.RunConfig

	// MaxFilesByMode overrides the per-mode candidate caps.
	// Modes absent from the map use domain defaults.
	MaxFilesByMode map[domain.SyncMode]int
}

// SyncRunner coordinates one sync run end to end: open a fresh remote
// store, build the known index, discover candidates, then download,
// hash-check, normalise, embed and upsert each one sequentially.
// Repeated invocations make forward progress because ingested files drop
// out of the candidate set.
type SyncRunner struct {
	factory    driven.RemoteStoreFactory
	docs       driven.DocumentStore
	embedder   driven.EmbeddingService
	normaliser driven.Normaliser
	cfg        Config

	mu         sync.Mutex
	running    bool
	lastReport *driving.SyncReport
}

// NewSyncRunner creates a sync runner.
func NewSyncRunner(
	factory driven.RemoteStoreFactory,
	docs driven.DocumentStore,
	embedder driven.EmbeddingService,
	normaliser driven.Normaliser,
	cfg Config,
) *SyncRunner {
	return &SyncRunner{
		factory:    factory,
		docs:       docs,
		embedder:   embedder,
		normaliser: normaliser,
		cfg:        cfg,
	}
}

// Run executes one chunked sync run and returns its report.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (r *SyncRunner) Run(ctx context.Context, opts driving.RunOptions) (*driving.SyncReport, error) {
	if !r.tryAcquire() {
		return nil, domain.ErrSyncInProgress
	}
	defer r.release()

	runCfg, err := r.runConfig(opts)
	if err != nil {
		return nil, err
	}

	stats := domain.NewRunStats(uuid.NewString(), runCfg.Mode, runCfg.MaxAPICalls)
	logger.Info("Starting %s sync run %s (max %d files, %d API calls)",
		runCfg.Mode, stats.RunID, runCfg.MaxFiles, runCfg.MaxAPICalls)

	remote, err := r.factory.Open(ctx, runCfg)
	if err != nil {
		return nil, fmt.Errorf("opening remote store: %w", err)
	}
	defer remote.Close()

	// The index is built once and stays read-only for the whole run;
	// files ingested mid-run are deliberately not added back.
	stored, err := r.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading known documents: %w", err)
	}
	index := domain.BuildKnownIndex(stored)
	stats.KnownAtStart = len(stored)

	disc, err := NewDiscoverer(remote, runCfg).Discover(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	recordDiscovery(stats, disc, runCfg.Mode)

	candidates := disc.Candidates
	if len(candidates) > runCfg.MaxFiles {
		candidates = candidates[:runCfg.MaxFiles]
	}

	stats.Phase = domain.PhaseProcessing
	for _, cand := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if float64(remote.RequestsMade()) >= budgetEarlyExitThreshold*float64(runCfg.MaxAPICalls) {
			stats.EarlyExit = true
			logger.Warn("API budget nearly spent (%d/%d), stopping run early",
				remote.RequestsMade(), runCfg.MaxAPICalls)
			break
		}
		if !r.processCandidate(ctx, remote, cand, index, runCfg, stats) {
			break
		}
	}

	stats.Phase = domain.PhaseComplete
	stats.EndedAt = time.Now()
	stats.APIRequestsMade = remote.RequestsMade()
	stats.RateLimitEvents = remote.RateLimitEvents()

	report := buildReport(stats)
	r.setLastReport(report)
	logger.Info("Run %s finished: %s", stats.RunID, report.Message)
	return report, nil
}

// Status reports whether a run is active plus store-level counts.
func (r *SyncRunner) Status(ctx context.Context) (*driving.SyncStatus, error) {
	count, err := r.docs.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return &driving.SyncStatus{
		Running:       r.running,
		DocumentCount: count,
		LastReport:    r.lastReport,
	}, nil
}

// runConfig merges per-run options onto the base configuration.
func (r *SyncRunner) runConfig(opts driving.RunOptions) (domain.RunConfig, error) {
	cfg := r.cfg.Base

	mode, err := domain.ParseSyncMode(string(opts.Mode))
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode

	cfg.MaxFiles = opts.MaxFiles
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = r.cfg.MaxFilesByMode[mode]
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = mode.DefaultMaxFiles()
	}
	if cfg.MaxAPICalls <= 0 {
		cfg.MaxAPICalls = domain.DefaultMaxAPICalls
	}
	if cfg.RootFolderID == "" {
		return cfg, fmt.Errorf("%w: drive root folder ID", domain.ErrMissingConfig)
	}

	return cfg, nil
}

// processCandidate runs the download → hash → normalise → embed → upsert
// pipeline for one file. Per-file failures are recorded and the run moves
// on; the return value is false only when the call budget is spent and
// the run must stop issuing work.
func (r *SyncRunner) processCandidate(
	ctx context.Context,
	remote driven.RemoteStore,
	cand domain.Candidate,
	index domain.KnownIndex,
	cfg domain.RunConfig,
	stats *domain.RunStats,
) bool {
	stats.Attempted++
	file := cand.File

	raw, err := remote.Download(ctx, file)
	if err != nil {
		stats.RecordFailure(err)
		logger.Debug("Download failed for %s: %v", file.Path(), err)
		if domain.IsBudgetExceeded(err) {
			stats.EarlyExit = true
			return false
		}
		return true
	}

	// The digest covers raw bytes, not normalised text, so markup-only
	// edits still register as changes.
	hash := domain.HashContent(raw)
	entry, known := index.Lookup(file)
	if known && entry.ContentHash == hash {
		stats.UnchangedFiles++
		stats.SkippedFiles++
		logger.Debug("Unchanged: %s", file.Path())
		return true
	}

	text := r.normaliser.Normalise(raw)
	if len(text) < cfg.MinLength() {
		stats.TooShort++
		stats.RecordFailure(domain.NewSyncError(domain.KindOther, file.Path(),
			fmt.Errorf("%w: %d characters after normalisation", domain.ErrContentTooShort, len(text))))
		return true
	}
	if limit := cfg.MaxChars(); len(text) > limit {
		text = truncateRunes(text, limit)
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		stats.RecordFailure(fileError(file, err))
		logger.Debug("Embedding failed for %s: %v", file.Path(), err)
		return true
	}
	stats.Embedded++

	// Known files keep their stored URL so the upsert updates in place;
	// new files get the canonical form.
	url := file.URI()
	if known {
		url = entry.URL
	}

	now := time.Now()
	doc := &domain.Document{
		URL:         url,
		Title:       r.normaliser.DeriveTitle(raw, file.Name),
		Content:     text,
		ContentHash: hash,
		Embedding:   vector,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.docs.UpsertDocument(ctx, doc); err != nil {
		stats.RecordFailure(fileError(file, fmt.Errorf("upsert document: %w", err)))
		return true
	}

	stats.Ingested++
	if cand.Class == domain.ClassPotentiallyUpdated {
		stats.UpdatedFiles++
	}
	logger.Debug("Ingested %s as %s (%s)", file.Path(), url, cand.Class)
	return true
}

// recordDiscovery copies the walk outcome onto the run stats.
func recordDiscovery(stats *domain.RunStats, disc *Discovery, mode domain.SyncMode) {
	stats.TotalDiscovered = disc.TotalDiscovered
	stats.Candidates = len(disc.Candidates)
	stats.FoldersWalked = disc.FoldersWalked
	stats.FilesSeen = disc.FilesSeen
	stats.ListingFailures = disc.ListingFailures
	stats.NewFiles = disc.NewFiles
	stats.PotentiallyUpdated = disc.PotentiallyUpdated
	stats.ExcludedUnchanged = disc.ExcludedUnchanged
	stats.UnchangedFiles = disc.ExcludedUnchanged
	stats.SkippedFiles = disc.ExcludedUnchanged
	if mode == domain.ModeMissingOnly {
		stats.MissingFiles = disc.NewFiles
	}
}

// fileError attaches the file path to errors raised by stages that do not
// know which file they were working on.
func fileError(file domain.RemoteFile, err error) error {
	var syncErr *domain.SyncError
	if errors.As(err, &syncErr) && syncErr.Path != "" {
		return err
	}
	return domain.NewSyncError(domain.KindOf(err), file.Path(), err)
}

// truncateRunes caps text at n runes without splitting a multi-byte rune.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// buildReport maps final run stats onto the wire-level report.
func buildReport(stats *domain.RunStats) *driving.SyncReport {
	kinds := make(map[string]int, len(stats.ErrorKinds))
	for kind, count := range stats.ErrorKinds {
		kinds[string(kind)] = count
	}

	report := &driving.SyncReport{
		Success:                  true,
		PagesScraped:             stats.Ingested,
		PagesSkipped:             stats.UnchangedFiles,
		TotalDiscovered:          stats.TotalDiscovered,
		TotalInDatabase:          stats.KnownAtStart,
		NewFiles:                 stats.NewFiles,
		UpdatedFiles:             stats.UpdatedFiles,
		UnchangedFiles:           stats.UnchangedFiles,
		MissingFiles:             stats.MissingFiles,
		FilesProcessedThisRun:    stats.Attempted,
		FilesRemainingForNextRun: stats.Remaining(),
		ProgressPercentage:       stats.Progress(),
		RateLimitErrors:          stats.RateLimitEvents,
		APIRequestsMade:          stats.APIRequestsMade,
		MaxAPIRequests:           stats.MaxAPIRequests,
		Errors:                   stats.Errors,
		Statistics: driving.RunStatistics{
			Discovery: driving.DiscoveryStatistics{
				FoldersWalked:      stats.FoldersWalked,
				FilesSeen:          stats.FilesSeen,
				FilesMatched:       stats.TotalDiscovered,
				New:                stats.NewFiles,
				PotentiallyUpdated: stats.PotentiallyUpdated,
				ExcludedUnchanged:  stats.ExcludedUnchanged,
				ListingFailures:    stats.ListingFailures,
			},
			Processing: driving.ProcessingStatistics{
				Attempted:        stats.Attempted,
				Ingested:         stats.Ingested,
				SkippedUnchanged: stats.UnchangedFiles - stats.ExcludedUnchanged,
				Embedded:         stats.Embedded,
				Failed:           stats.FailedFiles,
				TooShort:         stats.TooShort,
			},
			Completion: driving.CompletionStatistics{
				Phase:                string(stats.Phase),
				EarlyExit:            stats.EarlyExit,
				APIBudgetUsedPercent: budgetUsedPercent(stats),
				DurationMS:           stats.EndedAt.Sub(stats.StartedAt).Milliseconds(),
				ErrorKinds:           kinds,
			},
		},
		RunID: stats.RunID,
		Mode:  string(stats.Mode),
	}
	report.Message = reportMessage(stats)
	return report
}

// budgetUsedPercent reports requests made over the budget, 0-100.
func budgetUsedPercent(stats *domain.RunStats) int {
	if stats.MaxAPIRequests <= 0 {
		return 0
	}
	return stats.APIRequestsMade * 100 / stats.MaxAPIRequests
}

// reportMessage builds the one-line human summary.
func reportMessage(stats *domain.RunStats) string {
	msg := fmt.Sprintf("%s sync: %d ingested (%d new, %d updated), %d unchanged, %d failed, %d remaining",
		stats.Mode, stats.Ingested, stats.Ingested-stats.UpdatedFiles, stats.UpdatedFiles,
		stats.UnchangedFiles, stats.FailedFiles, stats.Remaining())
	if stats.EarlyExit {
		msg += fmt.Sprintf(" (stopped early at %d/%d API calls)", stats.APIRequestsMade, stats.MaxAPIRequests)
	}
	return msg
}

// tryAcquire marks a run active; only one run may be active at a time.
func (r *SyncRunner) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *SyncRunner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

func (r *SyncRunner) setLastReport(report *driving.SyncReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReport = report
}
