package public

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	publicapp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/application"
)

// FailedNotificationStore keeps notifications that could not be delivered.
type FailedNotificationStore interface {
	Save(ctx context.Context, target string, payload map[string]any, cause error, attempts int) error
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger               *zap.Logger
	shopQueries          publicapp.ShopQueryService
	categoryQueries      publicapp.CategoryQueryService
	bookingCommands      publicapp.BookingCommandService
	location             *time.Location
	httpClient           *http.Client
	messengerEndpoint    string
	messengerDestination string
	discordDestination   string
	slackDestination     string
	adminBookingBaseURL  string
	failedNotifications  FailedNotificationStore
	memoPolicy           *bluemonday.Policy
	notifyAsync          bool
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger               *zap.Logger
	ShopQueries          publicapp.ShopQueryService
	CategoryQueries      publicapp.CategoryQueryService
	BookingCommands      publicapp.BookingCommandService
	Location             *time.Location
	HTTPClient           *http.Client
	MessengerEndpoint    string
	MessengerDestination string
	DiscordDestination   string
	SlackDestination     string
	AdminBookingBaseURL  string
	FailedNotifications  FailedNotificationStore
	// NotifySync delivers booking notifications before responding. Tests use it.
	NotifySync bool
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	return &Handler{
		logger:               logger,
		shopQueries:          cfg.ShopQueries,
		categoryQueries:      cfg.CategoryQueries,
		bookingCommands:      cfg.BookingCommands,
		location:             loc,
		httpClient:           httpClient,
		messengerEndpoint:    cfg.MessengerEndpoint,
		messengerDestination: cfg.MessengerDestination,
		discordDestination:   cfg.DiscordDestination,
		slackDestination:     cfg.SlackDestination,
		adminBookingBaseURL:  cfg.AdminBookingBaseURL,
		failedNotifications:  cfg.FailedNotifications,
		memoPolicy:           bluemonday.StrictPolicy(),
		notifyAsync:          !cfg.NotifySync,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/categories", h.categoryListHandler())
	r.Get("/shops", h.shopListHandler())
	r.Get("/shops/{shopCode}", h.shopDetailHandler())
	r.With(authMiddleware).Post("/shops/{shopCode}/bookings", h.bookingCreateHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())
}
