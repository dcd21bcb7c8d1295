// Package cli implements the loresync command-line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tablekeep/loresync/internal/core/ports/driven"
	"github.com/tablekeep/loresync/internal/core/ports/driving"
	"github.com/tablekeep/loresync/internal/logger"
)

// version is the binary version, injected at build time.
var version = "dev"

// Services holds the driving-port implementations the commands call.
type Services struct {
	// Sync runs lore synchronisation.
	Sync driving.SyncService

	// Scheduler runs periodic syncs under serve.
	Scheduler driving.Scheduler

	// Tasks exposes scheduled-task state for status output.
	Tasks driven.SchedulerStore

	// Listen is the configured API listen address.
	Listen string
}

var (
	cfgPath string
	verbose bool

	// services is built on first use, or injected directly in tests.
	services *Services

	// buildServices is the composition root installed by package main.
	// It runs after global flags are parsed so --config takes effect.
	buildServices func(configPath string) (*Services, error)
)

// SetServices injects pre-built services.
func SetServices(s *Services) {
	services = s
}

// SetServiceBuilder installs the factory used to build services on first use.
func SetServiceBuilder(build func(configPath string) (*Services, error)) {
	buildServices = build
}

// SetVersion records the binary version.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "loresync",
	Short: "Sync campaign lore from Drive into the portal knowledge base",
	Long: `loresync walks a shared Drive folder tree, ingests new and changed
lore files, and keeps the portal's knowledge base current.

Runs are chunked: each run takes a bounded batch of files and reports
what remains, so repeated runs converge on a fully synced tree.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.loresync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// ensureServices returns the injected services, building them on first use.
func ensureServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if buildServices == nil {
		return nil, errors.New("sync service not configured")
	}
	built, err := buildServices(cfgPath)
	if err != nil {
		return nil, err
	}
	services = built
	return services, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
