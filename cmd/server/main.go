package main

import (
	"context"
	"fmt"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/handler"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/server"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/models"
)

// Populated at build time via -ldflags "-X main.buildVersion=...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("tollgate-server", "info").Fatal().Err(err).Msg("error getting configs")
	}

	// A binary built without ldflags reports the configured version.
	version := buildVersion
	if version == "" {
		version = cfg.App.Version
	}
	buildInfo := models.NewAppBuildInfo(version, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	log := logger.NewLogger("tollgate-server", cfg.App.LogLevel)
	log.Debug().
		Str("environment", cfg.App.Environment).
		Str("address", cfg.Server.HTTPAddress).
		Str("db_driver", cfg.Storage.DB.Driver).
		Str("blob_backend", cfg.Storage.Blob.Backend).
		Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repositories, err := store.NewRepositories(ctx, db, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating repositories")
	}

	services := service.NewServices(repositories, cfg, buildInfo, log)

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

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
