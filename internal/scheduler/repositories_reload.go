package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bambuco/boa/internal/catalogue"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/sources/repositories"
)

// RepositoriesReloader handles periodic reloading of the repositories file
type RepositoriesReloader struct {
	loader        *repositories.Loader
	mapper        *repositories.Mapper
	catalogue     *catalogue.Catalogue
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRepositoriesReloader creates a new repositories reloader
func NewRepositoriesReloader(
	repositoriesFile string,
	cat *catalogue.Catalogue,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RepositoriesReloader {
	return &RepositoriesReloader{
		loader:        repositories.NewLoader(repositoriesFile),
		mapper:        repositories.NewMapper(),
		catalogue:     cat,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (rr *RepositoriesReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload repositories",
						logger.Error(err))
				}
			case <-rr.manualTrigger:
				rr.logger.Info("manual reload triggered")
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload repositories",
						logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (rr *RepositoriesReloader) Stop() {
	close(rr.stopCh)
}

// Reload loads the repositories file and swaps the catalogue contents.
// A failed load keeps the previous catalogue so the service stays usable
// on a bad edit.
func (rr *RepositoriesReloader) Reload(_ context.Context) error {
	rr.logger.Info("reloading repositories file")

	config, err := rr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load repositories: %w", err)
	}

	repos, err := rr.mapper.MapRepositories(config)
	if err != nil {
		return fmt.Errorf("failed to map repositories: %w", err)
	}
	networks := rr.mapper.MapNetworks(config)

	rr.catalogue.Update(repos, networks)

	rr.logger.Info("repositories loaded",
		logger.Int("repositories", len(repos)),
		logger.Int("networks", len(networks)))
	return nil
}
