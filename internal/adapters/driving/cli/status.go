package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// statusHistoryLimit caps the scheduled runs shown.
const statusHistoryLimit = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document count and recent run outcomes",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := ensureServices()
	if err != nil {
		return err
	}

	status, err := svc.Sync.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	cmd.Printf("Documents stored: %d\n", status.DocumentCount)
	if status.Running {
		cmd.Println("A sync run is in progress.")
	}
	if report := status.LastReport; report != nil {
		cmd.Printf("Last run: %s\n", report.Message)
	}

	if svc.Tasks == nil {
		return nil
	}

	history, err := svc.Tasks.GetTaskHistory(cmd.Context(), domain.TaskIDLoreSync, statusHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading task history: %w", err)
	}
	if len(history) == 0 {
		return nil
	}

	cmd.Println("Recent scheduled runs:")
	for _, result := range history {
		outcome := fmt.Sprintf("%d ingested", result.ItemsProcessed)
		if !result.Success {
			outcome = "failed: " + result.Error
		}
		cmd.Printf("  %s  %s\n", result.StartedAt.Format(time.RFC3339), outcome)
	}
	return nil
}
