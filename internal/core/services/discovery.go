package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driven"
	"github.com/tablekeep/loresync/internal/logger"
)

// Discovery is the outcome of one folder-tree walk.
type Discovery struct {
	// Candidates are the files selected for processing, in walk order.
	Candidates []domain.Candidate

	// FoldersWalked counts folders listed, including the root.
	FoldersWalked int

	// FilesSeen counts every file encountered, matching or not.
	FilesSeen int

	// TotalDiscovered counts extension-matching files.
	TotalDiscovered int

	// NewFiles and PotentiallyUpdated count the candidate classes.
	NewFiles           int
	PotentiallyUpdated int

	// ExcludedUnchanged counts known files the mode excluded without download.
	ExcludedUnchanged int

	// ListingFailures counts subfolders skipped because their listing failed.
	ListingFailures int
}

// Discoverer walks the remote folder tree depth-first and classifies every
// matching file against the known index, without downloading content.
// Classification is mode-dependent: every unknown file is a candidate; known
// files are candidates in full mode, candidates in incremental mode when
// modified on or after the cutoff, and never candidates in missing-only mode.
type Discoverer struct {
	remote driven.RemoteStore
	cfg    domain.RunConfig
	now    func() time.Time
}

// NewDiscoverer creates a discoverer for one run.
func NewDiscoverer(remote driven.RemoteStore, cfg domain.RunConfig) *Discoverer {
	return &Discoverer{
		remote: remote,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Discover walks from the configured root folder.
// A subfolder whose listing fails contributes no files and the walk
// continues; a root listing failure or budget exhaustion aborts the walk.
func (d *Discoverer) Discover(ctx context.Context, index domain.KnownIndex) (*Discovery, error) {
	disc := &Discovery{}

	var cutoff time.Time
	if d.cfg.Mode == domain.ModeIncremental {
		window := d.cfg.IncrementalWindow
		if window <= 0 {
			window = domain.DefaultIncrementalWindow
		}
		cutoff = d.now().Add(-window)
	}

	if err := d.walk(ctx, d.cfg.RootFolderID, "", index, cutoff, disc, true); err != nil {
		return nil, err
	}

	logger.Info("Discovery: %d folders, %d files seen, %d matched, %d candidates",
		disc.FoldersWalked, disc.FilesSeen, disc.TotalDiscovered, len(disc.Candidates))
	return disc, nil
}

// walk lists one folder, classifies its files and descends into subfolders.
func (d *Discoverer) walk(ctx context.Context, folderID, path string, index domain.KnownIndex, cutoff time.Time, disc *Discovery, isRoot bool) error {
	listing, err := d.remote.ListFolder(ctx, folderID)
	if err != nil {
		switch {
		case isRoot:
			return fmt.Errorf("listing root folder: %w", err)
		case domain.IsBudgetExceeded(err) || ctx.Err() != nil:
			return fmt.Errorf("listing folder %q: %w", path, err)
		default:
			// One bad subfolder must not sink the walk
			disc.ListingFailures++
			logger.Warn("Skipping folder %s: %v", path, err)
			return nil
		}
	}
	disc.FoldersWalked++

	for _, file := range listing.Files {
		file.FolderPath = path
		d.classify(file, index, cutoff, disc)
	}

	for _, folder := range listing.Folders {
		childPath := folder.Name
		if path != "" {
			childPath = path + "/" + folder.Name
		}
		if err := d.walk(ctx, folder.ID, childPath, index, cutoff, disc, false); err != nil {
			return err
		}
	}

	return nil
}

// classify buckets one file and appends it to the candidates when selected.
// Counters stay correct for files that are never downloaded.
func (d *Discoverer) classify(file domain.RemoteFile, index domain.KnownIndex, cutoff time.Time, disc *Discovery) {
	disc.FilesSeen++

	if !strings.HasSuffix(strings.ToLower(file.Name), d.extension()) {
		return
	}
	disc.TotalDiscovered++

	_, known := index.Lookup(file)
	switch {
	case !known:
		disc.NewFiles++
		disc.Candidates = append(disc.Candidates, domain.Candidate{File: file, Class: domain.ClassNew})
	case d.cfg.Mode == domain.ModeMissingOnly:
		disc.ExcludedUnchanged++
	case d.cfg.Mode == domain.ModeIncremental && file.ModifiedTime.Before(cutoff):
		disc.ExcludedUnchanged++
	default:
		disc.PotentiallyUpdated++
		disc.Candidates = append(disc.Candidates, domain.Candidate{File: file, Class: domain.ClassPotentiallyUpdated})
	}
}

// extension returns the lowercase content-file extension to match.
func (d *Discoverer) extension() string {
	if d.cfg.FileExtension == "" {
		return domain.DefaultFileExtension
	}
	return strings.ToLower(d.cfg.FileExtension)
}
