package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/config"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/observability"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/server"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := server.New(cfg, client, logger)
	if err := app.Run(runCtx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
