package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/MKhiriev/go-deck-sync/internal/adapter"
	"github.com/MKhiriev/go-deck-sync/internal/client"
	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/internal/tui"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	fmt.Print(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}
	if buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	ownerID, err := utils.ParseOwnerIDFromJWT(cfg.App.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client token is not usable: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to the TUI from here on
	log := logger.NewClientLogger("go-deck-client", cfg.Log).WithField("owner", strconv.FormatInt(ownerID, 10))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	localStorage, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer localStorage.Close()

	services := service.NewClientServices(localStorage, serverAdapter, cfg, log)
	ui := tui.New(services, cfg.App.Version, log)

	app, err := client.NewApp(services, ui, serverAdapter, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("client run error")
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
	}
}
