// Package tui is the client's terminal interface: a collection browser with
// a live sync status line.
package tui

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	collections service.ClientCollectionService
	sync        service.ClientSyncService
	version     string
	logger      *logger.Logger
}

func New(services *service.ClientServices, version string, logger *logger.Logger) *TUI {
	return &TUI{
		collections: services.CollectionService,
		sync:        services.SyncService,
		version:     version,
		logger:      logger,
	}
}

// Run blocks until the user quits or ctx is cancelled. Focus reporting is
// enabled so returning to the terminal triggers a sync.
func (t *TUI) Run(ctx context.Context) error {
	model := newModel(ctx, t.collections, t.sync, t.version)
	_, err := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
