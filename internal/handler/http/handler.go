package http

import (
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
)

// maxPushBodyBytes caps the size of a push request body.
const maxPushBodyBytes = 8 << 20

type Handler struct {
	services *service.Services

	// checkHash enables the push integrity middleware.
	checkHash      bool
	requestTimeout time.Duration

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. A non-empty hash key turns on push
// integrity checks and initializes the shared hasher pool.
func NewHandler(services *service.Services, serverCfg config.Server, appCfg config.App, logger *logger.Logger) *Handler {
	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	logger.Info().Bool("hash_check", appCfg.HashKey != "").Msg("http handler created")
	return &Handler{
		services:       services,
		checkHash:      appCfg.HashKey != "",
		requestTimeout: serverCfg.RequestTimeout,
		logger:         logger,
	}
}
