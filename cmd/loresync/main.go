// Command loresync keeps the campaign portal's knowledge base in step
// with a shared Google Drive folder of lore files.
package main

import (
	"fmt"
	"os"

	"github.com/tablekeep/loresync/internal/adapters/driven/config/file"
	"github.com/tablekeep/loresync/internal/adapters/driven/embedding/openai"
	"github.com/tablekeep/loresync/internal/adapters/driven/storage/sqlite"
	"github.com/tablekeep/loresync/internal/adapters/driving/cli"
	"github.com/tablekeep/loresync/internal/connectors/google/drive"
	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/services"
	"github.com/tablekeep/loresync/internal/logger"
	"github.com/tablekeep/loresync/internal/normalisers/markdown"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceBuilder(buildServices)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices assembles the driven adapters behind the driving ports.
// It runs on first command use, after global flags are parsed, so an
// explicit --config path takes effect.
func buildServices(configPath string) (*cli.Services, error) {
	cfg, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	factory, err := drive.NewFactory(drive.Config{
		APIKey:  cfg.Drive.APIKey,
		BaseURL: cfg.Drive.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	runner := services.NewSyncRunner(factory, store.DocumentStore(), embedder, markdown.New(), services.Config{
		Base: cfg.RunConfig(),
		MaxFilesByMode: map[domain.SyncMode]int{
			domain.ModeFull:        cfg.MaxFilesFor(domain.ModeFull),
			domain.ModeIncremental: cfg.MaxFilesFor(domain.ModeIncremental),
			domain.ModeMissingOnly: cfg.MaxFilesFor(domain.ModeMissingOnly),
		},
	})

	scheduler := services.NewScheduler(cfg.SchedulerConfig(), store.SchedulerStore(), runner)

	return &cli.Services{
		Sync:      runner,
		Scheduler: scheduler,
		Tasks:     store.SchedulerStore(),
		Listen:    cfg.Server.Listen,
	}, nil
}
