package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/observability"
)

type seedOptions struct {
	envName         string
	shopCount       int
	dropCollections bool
	randomSeed      int64
}

type collections struct {
	shops               string
	categories          string
	bookings            string
	failedNotifications string
}

func main() {
	opts := parseFlags()

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := loadEnvFiles(opts.envName); err != nil {
		logger.Warn("env file load failed", zap.Error(err))
	}

	cfg := collections{
		shops:               envOrDefault("SHOP_COLLECTION", "shops"),
		categories:          envOrDefault("CATEGORY_COLLECTION", "categories"),
		bookings:            envOrDefault("BOOKING_COLLECTION", "bookings"),
		failedNotifications: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "header")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		dropCollections(ctx, db, cfg, logger)
	}
	if err := ensureIndexes(ctx, db, cfg); err != nil {
		logger.Fatal("index creation failed", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	categoryDocs := generateCategories()
	shopDocs := generateShops(rng, opts.shopCount, time.Now().UTC())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return insertMany(gctx, db.Collection(cfg.categories), toAnySlice(categoryDocs))
	})
	g.Go(func() error {
		return insertMany(gctx, db.Collection(cfg.shops), toAnySlice(shopDocs))
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("seed insert failed", zap.Error(err))
	}

	logger.Info("seed completed",
		zap.Int("categories", len(categoryDocs)),
		zap.Int("shops", len(shopDocs)),
		zap.String("database", dbName),
		zap.String("env", opts.envName),
		zap.Int64("seed", opts.randomSeed),
	)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env file name under ../env (local, staging)")
	flag.IntVar(&opts.shopCount, "shops", 60, "number of shops to generate")
	flag.BoolVar(&opts.dropCollections, "drop", true, "drop existing collections before seeding")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed for reproducible data")
	flag.Parse()

	if opts.shopCount <= 0 {
		log.Fatal("shops must be at least 1")
	}
	return opts
}

func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	files := []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	}
	for _, file := range files {
		if err := loadEnvFile(file); err != nil {
			return err
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if err := os.Setenv(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func dropCollections(ctx context.Context, db *mongo.Database, cfg collections, logger *zap.Logger) {
	for _, name := range []string{cfg.shops, cfg.categories, cfg.bookings, cfg.failedNotifications} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			logger.Warn("collection drop failed", zap.String("collection", name), zap.Error(err))
		}
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database, cfg collections) error {
	shopIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_shop_code").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "categoryCode", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_shop_category_created"),
		},
	}
	if _, err := db.Collection(cfg.shops).Indexes().CreateMany(ctx, shopIndexes); err != nil {
		return err
	}

	if _, err := db.Collection(cfg.categories).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("uniq_category_code").SetUnique(true),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(cfg.bookings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shopCode", Value: 1}, {Key: "reservedAt", Value: 1}},
		Options: options.Index().SetName("idx_booking_shop_reserved"),
	}); err != nil {
		return err
	}

	if _, err := db.Collection(cfg.failedNotifications).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_failed_status_created"),
	}); err != nil {
		return err
	}
	return nil
}

func insertMany(ctx context.Context, col *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
