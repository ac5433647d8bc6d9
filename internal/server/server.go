// Package server is the composition root of the discovery API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/config"
	mongodoc "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/infrastructure/mongo"
	commonhttp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
	publichttp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/public"
	publicapp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/application"
)

const (
	shutdownTimeout  = 10 * time.Second
	defaultMessenger = "http://messenger-gateway:3000"
)

// Server owns the HTTP lifecycle of the discovery API.
type Server struct {
	logger   *zap.Logger
	client   *mongo.Client
	addr     string
	location *time.Location
	verifier *tokenVerifier
	cors     corsPolicy

	shops    *mongodoc.ShopRepository
	bookings *mongodoc.BookingRepository
	handler  publichttp.Config
}

// New wires repositories, application services and handlers.
func New(cfg config.Config, client *mongo.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
		logger.Warn("timezone load failed, using KST", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	db := client.Database(cfg.MongoDatabase)
	shops := mongodoc.NewShopRepository(db, cfg.ShopCollection)
	bookings := mongodoc.NewBookingRepository(db, cfg.BookingCollection)
	categories := mongodoc.NewCategoryRepository(db, cfg.CategoryCollection)

	messenger := normaliseBaseURL(cfg.MessengerEndpoint)
	if messenger == "" {
		messenger = defaultMessenger
	}

	return &Server{
		logger:   logger,
		client:   client,
		addr:     cfg.Addr,
		location: loc,
		verifier: newTokenVerifier(cfg.JWTConfigs, cfg.JWTAudience),
		cors:     newCORSPolicy(cfg.AllowedOrigins),
		shops:    shops,
		bookings: bookings,
		handler: publichttp.Config{
			Logger:          logger,
			ShopQueries:     publicapp.NewShopQueryService(shops),
			CategoryQueries: publicapp.NewCategoryQueryService(categories),
			BookingCommands: publicapp.NewBookingCommandService(publicapp.BookingServiceDeps{
				Shops:    shops,
				Bookings: bookings,
			}),
			Location:             loc,
			HTTPClient:           &http.Client{Timeout: cfg.MessengerTimeout},
			MessengerEndpoint:    messenger,
			MessengerDestination: cfg.MessengerDestination,
			DiscordDestination:   cfg.DiscordDestination,
			SlackDestination:     strings.TrimSpace(cfg.SlackDestination),
			AdminBookingBaseURL:  cfg.AdminBookingBaseURL,
			FailedNotifications:  mongodoc.NewFailedNotificationRepository(db, cfg.FailedNotificationCollection),
		},
	}
}

// Run serves HTTP until ctx is canceled or the listener fails, then drains
// in-flight requests and disconnects MongoDB.
func (s *Server) Run(ctx context.Context) error {
	s.ensureIndexes(ctx)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.disconnect()
	return err
}

// Router assembles middleware and routes.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(traceRequests)
	router.Use(s.cors.middleware)

	router.Get("/healthz", s.healthHandler())
	publichttp.NewHandler(s.handler).Register(router, s.authMiddleware)
	return router
}

func (s *Server) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.shops.EnsureIndexes(ctx); err != nil {
		s.logger.Warn("shop index creation failed", zap.Error(err))
	}
	if err := s.bookings.EnsureIndexes(ctx); err != nil {
		s.logger.Warn("booking index creation failed", zap.Error(err))
	}
}

func (s *Server) disconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}

// healthHandler reports MongoDB reachability only.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

func normaliseBaseURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
