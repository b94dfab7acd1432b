// Package infrastructure provides core service initialization for application
// startup. It assembles the common dependencies (lifecycle, logging, scratch
// storage, upstream client) that the domain systems require.
package infrastructure

import (
	"log/slog"
	"os"

	"consensor/internal/config"
	"consensor/internal/pybossa"
	"consensor/pkg/lifecycle"
	"consensor/pkg/scratch"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Scratch   *scratch.Store
	Upstream  *pybossa.Client
}

// New creates an Infrastructure from the application configuration. It
// initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Scratch:   scratch.New(&cfg.Scratch, logger),
		Upstream:  pybossa.NewClient(&cfg.Upstream, logger),
	}, nil
}

// Start registers the infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	return i.Scratch.Start(i.Lifecycle)
}
