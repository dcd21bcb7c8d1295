package drive

import (
	"time"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// Default configuration values.
const (
	// DefaultBaseURL is the Drive REST API root.
	DefaultBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the listing page size. Each page costs one API call.
	DefaultPageSize = 100

	// MaxDownloadSize caps file downloads (5MB). Larger files fail per-file
	// before any download request is made.
	MaxDownloadSize = 5 * 1024 * 1024
)

// MimeTypeFolder identifies folders in listing responses.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Config holds configuration for the Drive client.
type Config struct {
	// APIKey authenticates requests to the shared lore folder (required).
	APIKey string

	// BaseURL is the API root (default: DefaultBaseURL).
	// Changed in tests to point at a local server.
	BaseURL string

	// MaxRequests caps API calls for the run (default: domain.DefaultMaxAPICalls).
	MaxRequests int

	// MaxDownloadSize caps file downloads in bytes (default: MaxDownloadSize).
	MaxDownloadSize int64

	// Timeout is the per-request timeout (default: DefaultTimeout).
	Timeout time.Duration

	// PageSize is the listing page size (default: DefaultPageSize).
	PageSize int

	// Pacing overrides the pacer tuning. Zero fields take pacer defaults.
	Pacing PacerConfig
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = domain.DefaultMaxAPICalls
	}
	if c.MaxDownloadSize == 0 {
		c.MaxDownloadSize = MaxDownloadSize
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}
