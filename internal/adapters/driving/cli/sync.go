package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driving"
)

var (
	syncMode     string
	syncMaxFiles int
	syncJSON     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one lore sync against the Drive folder tree",
	Long: `Runs one chunked sync: walks the configured Drive folder tree,
ingests new and changed lore files, and reports what remains.

Repeated runs make forward progress. Use --mode missing-only to
backfill a large tree in batches without re-checking known files.`,
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().StringVar(&syncMode, "mode", "", "sync mode: full, incremental or missing-only")
	syncCmd.Flags().IntVar(&syncMaxFiles, "max-files", 0, "cap on files attempted this run (default per mode)")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the full report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	svc, err := ensureServices()
	if err != nil {
		return err
	}

	report, err := svc.Sync.Run(cmd.Context(), driving.RunOptions{
		Mode:     domain.SyncMode(syncMode),
		MaxFiles: syncMaxFiles,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		return outputReportJSON(cmd, report)
	}
	outputReportSummary(cmd, report)
	return nil
}

// outputReportJSON prints the report in the portal's JSON contract.
func outputReportJSON(cmd *cobra.Command, report *driving.SyncReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputReportSummary prints a human-readable run summary.
func outputReportSummary(cmd *cobra.Command, report *driving.SyncReport) {
	cmd.Printf("Run %s (%s mode)\n", report.RunID, report.Mode)
	cmd.Printf("  Discovered: %d matching files in %d folders\n",
		report.TotalDiscovered, report.Statistics.Discovery.FoldersWalked)
	cmd.Printf("  Ingested:   %d (%d new, %d updated)\n",
		report.PagesScraped, report.NewFiles, report.UpdatedFiles)
	cmd.Printf("  Unchanged:  %d\n", report.UnchangedFiles)
	cmd.Printf("  Failed:     %d\n", report.Statistics.Processing.Failed)
	cmd.Printf("  API calls:  %d/%d\n", report.APIRequestsMade, report.MaxAPIRequests)

	if report.FilesRemainingForNextRun > 0 {
		cmd.Printf("  Remaining:  %d files (%d%% complete); run again to continue\n",
			report.FilesRemainingForNextRun, report.ProgressPercentage)
	}
	if report.Statistics.Completion.EarlyExit {
		cmd.Println("  Stopped early: API call budget nearly spent.")
	}
	if len(report.Errors) > 0 {
		cmd.Println("  Errors:")
		for _, msg := range report.Errors {
			cmd.Printf("    - %s\n", msg)
		}
	}
}
