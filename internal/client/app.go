package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/workers"
)

type App struct {
	ui      UI
	workers *workers.Workers
	logger  *logger.Logger
}

func NewApp(services *service.ClientServices, ui UI, prober workers.HealthProber, cfg config.ClientWorkers, logger *logger.Logger) (*App, error) {
	if services == nil || services.SyncService == nil {
		return nil, errors.New("client app requires a sync service")
	}

	monitor := workers.NewConnectivityMonitor(prober, services.SyncService, cfg.HealthInterval, logger)

	return &App{
		ui:      ui,
		workers: workers.NewWorkers(services.SyncService, monitor),
		logger:  logger,
	}, nil
}

// Run blocks until the UI returns, then stops the background workers and
// waits for them so no pass is cut off mid-write.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- a.workers.Run(ctx)
	}()

	uiErr := a.ui.Run(ctx)
	cancel()

	select {
	case err := <-workersDone:
		if err != nil {
			a.logger.Err(err).Str("func", "*App.Run").Msg("background workers failed")
		}
	case <-time.After(5 * time.Second):
		a.logger.Warn().Str("func", "*App.Run").Msg("background workers did not stop in time")
	}

	if uiErr != nil {
		return fmt.Errorf("ui: %w", uiErr)
	}
	return nil
}
