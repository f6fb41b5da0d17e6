package service

import (
	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/internal/validators"
)

type Services struct {
	AuthService    AuthService
	PullService    PullService
	PushService    PushService
	AppInfoService AppInfoService
	HealthService  HealthService
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	validator := validators.NewChangeValidator(cfg.App.MaxPushChanges)
	pushService := NewPushValidationService(validator).
		Wrap(NewPushService(storages.Collections, validator, logger))

	return &Services{
		AuthService:    NewAuthService(cfg.App, logger),
		PullService:    NewPullService(storages.Collections, logger),
		PushService:    pushService,
		AppInfoService: appInfoService,
		HealthService:  NewHealthService(storages.Collections),
	}, nil
}
