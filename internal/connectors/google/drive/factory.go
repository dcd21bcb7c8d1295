package drive

import (
	"context"
	"fmt"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.RemoteStoreFactory = (*Factory)(nil)

// Factory opens run-scoped Drive clients.
// Pacer state and the call budget live on the client, so each run starts
// fresh from the delay floor with a full budget.
type Factory struct {
	cfg Config
}

// NewFactory creates a client factory from base configuration.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("drive: %w: api key", domain.ErrMissingConfig)
	}
	return &Factory{cfg: cfg}, nil
}

// Open creates a RemoteStore configured for the run.
func (f *Factory) Open(_ context.Context, runCfg domain.RunConfig) (driven.RemoteStore, error) {
	cfg := f.cfg
	if runCfg.MaxAPICalls > 0 {
		cfg.MaxRequests = runCfg.MaxAPICalls
	}
	return NewClient(cfg)
}
