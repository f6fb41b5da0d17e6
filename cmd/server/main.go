package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/handler"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/server"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	fmt.Print(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	log := logger.NewLogger("go-deck-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}
