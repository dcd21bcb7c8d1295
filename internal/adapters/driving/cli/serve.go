package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tablekeep/loresync/internal/adapters/driving/httpapi"
	"github.com/tablekeep/loresync/internal/logger"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync API and run the background scheduler",
	Long: `Starts the HTTP API and the background scheduler.

The scheduler re-runs the configured sync on an interval so chunked
runs keep making forward progress without operator action.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := ensureServices()
	if err != nil {
		return err
	}

	listen := serveListen
	if listen == "" {
		listen = svc.Listen
	}

	server := httpapi.NewServer(listen, svc.Sync, svc.Tasks)

	schedCtx, stopScheduler := context.WithCancel(cmd.Context())
	defer stopScheduler()
	if svc.Scheduler != nil {
		go func() {
			if err := svc.Scheduler.Start(schedCtx); err != nil && err != context.Canceled {
				logger.Warn("Scheduler stopped: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cmd.Printf("loresync API listening on %s\n", listen)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		cmd.Println("Shutting down...")
	}

	if svc.Scheduler != nil {
		stopScheduler()
		if err := svc.Scheduler.Stop(); err != nil {
			logger.Warn("Stopping scheduler: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
