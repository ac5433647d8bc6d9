package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/config"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/remote"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/geolocation"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.LoadClient()

	client, err := remote.New(remote.Config{
		BaseURL:           cfg.APIBaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.RequestTimeout},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
		Token:             cfg.APIToken,
	})
	if err != nil {
		logger.Fatal("discovery client init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var locator geolocation.Locator
	if cfg.Latitude != nil && cfg.Longitude != nil {
		locator = geolocation.StaticLocator{Position: &domain.Coordinates{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}}
	} else {
		locator = geolocation.NewIPLocator(geolocation.IPLocatorConfig{
			Endpoint:  cfg.GeoEndpoint,
			UserAgent: cfg.GeoUserAgent,
			Timeout:   cfg.GeoTimeout,
		})
	}
	position := geolocation.NewProvider(locator, geolocation.WithTimeout(cfg.GeoTimeout), geolocation.WithLogger(logger))

	app := newApp(ctx, client, position, logger, os.Stdout)
	defer app.close()

	if err := app.start(ctx); err != nil {
		logger.Warn("initial load failed", zap.Error(err))
	}
	if err := app.run(ctx, os.Stdin); err != nil {
		logger.Error("discover terminated", zap.Error(err))
	}
}

