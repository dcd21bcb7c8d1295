package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// Environment variables that override file values.
const (
	EnvDriveAPIKey     = "LORESYNC_DRIVE_API_KEY"
	EnvDriveFolderID   = "LORESYNC_DRIVE_FOLDER_ID"
	EnvEmbeddingAPIKey = "LORESYNC_EMBEDDING_API_KEY"
	EnvDataDir         = "LORESYNC_DATA_DIR"
	EnvListen          = "LORESYNC_LISTEN"
)

// DefaultListen is the HTTP API bind address.
const DefaultListen = ":8080"

// Config is the loresync configuration, loaded once at startup from
// ~/.loresync/config.toml with environment overrides on top.
type Config struct {
	// DataDir overrides the default ~/.loresync/data database location.
	DataDir string `toml:"data_dir"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Drive     DriveConfig     `toml:"drive"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Sync      SyncConfig      `toml:"sync"`
	Server    ServerConfig    `toml:"server"`
	Scheduler SchedulerConfig `toml:"scheduler"`

	path          string
	schedInterval time.Duration
	schedMode     domain.SyncMode
}

// DriveConfig holds Google Drive access settings.
type DriveConfig struct {
	// APIKey authenticates read-only Drive API requests.
	APIKey string `toml:"api_key"`

	// RootFolderID is the shared folder the walk starts from.
	RootFolderID string `toml:"root_folder_id"`

	// BaseURL overrides the Drive API endpoint.
	BaseURL string `toml:"base_url"`
}

// EmbeddingConfig holds embedding API settings.
type EmbeddingConfig struct {
	// APIKey authenticates embedding requests.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `toml:"base_url"`

	// Model selects the embedding model.
	Model string `toml:"model"`

	// Dimensions overrides the model's vector size.
	Dimensions int `toml:"dimensions"`

	// RequestsPerSecond paces embedding calls. Zero means the adapter default.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SyncConfig holds run tuning.
type SyncConfig struct {
	// MaxAPICalls caps remote store requests per run.
	MaxAPICalls int `toml:"max_api_calls"`

	// FileExtension selects lore content files in the remote tree.
	FileExtension string `toml:"file_extension"`

	// IncrementalWindowDays is how far back incremental mode looks.
	IncrementalWindowDays int `toml:"incremental_window_days"`

	// Per-mode candidate caps.
	MaxFilesFull        int `toml:"max_files_full"`
	MaxFilesIncremental int `toml:"max_files_incremental"`
	MaxFilesMissingOnly int `toml:"max_files_missing_only"`

	// MinContentLength gates ingestion of short documents.
	MinContentLength int `toml:"min_content_length"`

	// MaxContentChars caps normalised content before embedding.
	MaxContentChars int `toml:"max_content_chars"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Listen is the bind address for loresync serve.
	Listen string `toml:"listen"`
}

// SchedulerConfig holds background sync settings.
type SchedulerConfig struct {
	// Enabled is the master switch for scheduled syncs.
	Enabled bool `toml:"enabled"`

	// Interval between scheduled runs, as a duration string.
	Interval string `toml:"interval"`

	// Mode is the sync mode scheduled runs use.
	Mode string `toml:"mode"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Listen: DefaultListen},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Sync: SyncConfig{
			MaxAPICalls:           domain.DefaultMaxAPICalls,
			FileExtension:         domain.DefaultFileExtension,
			IncrementalWindowDays: 7,
			MaxFilesFull:          domain.ModeFull.DefaultMaxFiles(),
			MaxFilesIncremental:   domain.ModeIncremental.DefaultMaxFiles(),
			MaxFilesMissingOnly:   domain.ModeMissingOnly.DefaultMaxFiles(),
			MinContentLength:      domain.DefaultMinContentLength,
			MaxContentChars:       domain.DefaultMaxContentChars,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Interval: "1h",
			Mode:     string(domain.ModeIncremental),
		},
	}
}

// Load reads configuration from the given TOML file, or from
// ~/.loresync/config.toml when path is empty. A missing default file is
// fine; a missing explicit file is an error. A local .env is loaded first
// so development keys need not live in the shell profile.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".loresync", "config.toml")
	}
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file yet - environment and defaults carry the run
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.finalise(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDriveAPIKey); v != "" {
		c.Drive.APIKey = v
	}
	if v := os.Getenv(EnvDriveFolderID); v != "" {
		c.Drive.RootFolderID = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
}

// finalise parses the fields that need more than TOML decoding.
func (c *Config) finalise() error {
	c.schedInterval = time.Hour
	if c.Scheduler.Interval != "" {
		d, err := time.ParseDuration(c.Scheduler.Interval)
		if err != nil {
			return fmt.Errorf("parsing scheduler interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: scheduler interval must be positive", domain.ErrInvalidInput)
		}
		c.schedInterval = d
	}

	mode, err := domain.ParseSyncMode(c.Scheduler.Mode)
	if err != nil {
		return fmt.Errorf("scheduler mode: %w", err)
	}
	c.schedMode = mode

	return nil
}

// Validate checks the values a sync run cannot start without.
func (c *Config) Validate() error {
	if c.Drive.APIKey == "" {
		return fmt.Errorf("%w: drive API key (set %s or drive.api_key)", domain.ErrMissingConfig, EnvDriveAPIKey)
	}
	if c.Drive.RootFolderID == "" {
		return fmt.Errorf("%w: drive root folder ID (set %s or drive.root_folder_id)", domain.ErrMissingConfig, EnvDriveFolderID)
	}
	return nil
}

// RunConfig maps the sync section onto a base run configuration.
// Mode and MaxFiles are per-run inputs and stay zero here.
func (c *Config) RunConfig() domain.RunConfig {
	return domain.RunConfig{
		RootFolderID:      c.Drive.RootFolderID,
		MaxAPICalls:       c.Sync.MaxAPICalls,
		FileExtension:     c.Sync.FileExtension,
		IncrementalWindow: time.Duration(c.Sync.IncrementalWindowDays) * 24 * time.Hour,
		MinContentLength:  c.Sync.MinContentLength,
		MaxContentChars:   c.Sync.MaxContentChars,
	}
}

// MaxFilesFor returns the configured per-run candidate cap for a mode.
func (c *Config) MaxFilesFor(mode domain.SyncMode) int {
	switch mode {
	case domain.ModeFull:
		return c.Sync.MaxFilesFull
	case domain.ModeMissingOnly:
		return c.Sync.MaxFilesMissingOnly
	default:
		return c.Sync.MaxFilesIncremental
	}
}

// SchedulerConfig maps the scheduler section onto the domain configuration.
func (c *Config) SchedulerConfig() domain.SchedulerConfig {
	sc := domain.DefaultSchedulerConfig()
	sc.Enabled = c.Scheduler.Enabled
	sc.TaskConfigs[domain.TaskIDLoreSync] = domain.TaskConfig{
		Enabled:  c.Scheduler.Enabled,
		Interval: c.schedInterval,
		Mode:     c.schedMode,
	}
	return sc
}

// Path returns the configuration file path the loader resolved.
func (c *Config) Path() string {
	return c.path
}
