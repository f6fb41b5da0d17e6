package service

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/store"
)

type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

func NewAppInfoService(cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}

type healthService struct {
	collections store.CollectionStore
}

// NewHealthService reports the reachability of collections.
func NewHealthService(collections store.CollectionStore) HealthService {
	return &healthService{collections: collections}
}

func (s *healthService) Ping(ctx context.Context) error {
	return s.collections.Ping(ctx)
}
