package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tacoworks/tollgate/internal/adapter"
	"github.com/tacoworks/tollgate/internal/client"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewClientLogger("tollgate-cli", "info").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("tollgate-cli", cfg.App.LogLevel)

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server adapter")
	}

	app, err := client.NewApp(serverAdapter, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	// Global flags were consumed by config parsing; the remainder is the
	// subcommand and its own flags.
	if err = app.Run(context.Background(), flag.Args()); err != nil {
		log.Error().Err(err).Msg("client run error")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// printBuildInfo goes to stderr: stdout is reserved for command output so
// pulled payloads can be piped.
func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Fprintf(os.Stderr, "Build version: %s\n", buildVersion)
	fmt.Fprintf(os.Stderr, "Build date: %s\n", buildDate)
	fmt.Fprintf(os.Stderr, "Build commit: %s\n", buildCommit)
}
