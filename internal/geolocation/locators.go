package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

// StaticLocator returns a configured position, or ErrGeolocationUnavailable
// when none is configured.
type StaticLocator struct {
	Position *domain.Coordinates
}

// Locate implements Locator.
func (s StaticLocator) Locate(context.Context) (domain.Coordinates, error) {
	if s.Position == nil {
		return domain.Coordinates{}, domain.ErrGeolocationUnavailable
	}
	return *s.Position, nil
}

// DefaultIPEndpoint answers with the caller's approximate position.
const DefaultIPEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPLocatorConfig configures IPLocator.
type IPLocatorConfig struct {
	Endpoint       string
	UserAgent      string
	RequestsPerSec float64
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// IPLocator resolves an approximate position from the public IP address.
type IPLocator struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewIPLocator creates an IP based locator.
func NewIPLocator(cfg IPLocatorConfig) *IPLocator {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultIPEndpoint
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &IPLocator{
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate implements Locator.
func (l *IPLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, err
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: HTTP %d", resp.StatusCode)
	}

	var payload ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: decode: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return domain.Coordinates{}, fmt.Errorf("ip lookup: %s", payload.Message)
	}
	return domain.Coordinates{Latitude: payload.Lat, Longitude: payload.Lon}, nil
}
