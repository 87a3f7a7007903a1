package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/farmlink/internal/client"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	fmt.Println(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewClientLogger(cfg.App.LogRole, cfg.App.LogFile)

	app, err := client.NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credentials := models.Credentials{
		Email:    os.Getenv("FARMLINK_EMAIL"),
		Password: os.Getenv("FARMLINK_PASSWORD"),
	}
	if err = app.Run(log.WithContext(ctx), credentials); err != nil {
		log.Error().Err(err).Msg("client run error")
		stop()
		os.Exit(1)
	}
}
