package service

import (
	"github.com/MKhiriev/go-deck-sync/internal/adapter"
	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/store"
)

type ClientServices struct {
	CollectionService ClientCollectionService
	SyncService       ClientSyncService
}

func NewClientServices(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	syncSvc := NewSyncCoordinator(
		localStore.Queue,
		localStore.Cache,
		serverAdapter,
		NewPolicy(cfg.Workers, cfg.Adapter),
		NewRealClock(),
		logger,
	)

	return &ClientServices{
		CollectionService: NewClientCollectionService(localStore.Cache, localStore.Queue, syncSvc, logger),
		SyncService:       syncSvc,
	}
}
