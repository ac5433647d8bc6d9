// Package remote is the HTTP client for the shop discovery API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRequestsPerSec = 5
	requestIDHeader       = "X-Request-ID"
)

var tracer = otel.Tracer("github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/remote")

// Config configures a Client. BaseURL is required.
type Config struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Logger            *zap.Logger
	// Token is sent as a bearer token on booking requests.
	Token string
}

// Client talks to the discovery API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	token      string
	group      singleflight.Group
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote: invalid base url %q", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSec
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
		token:      cfg.Token,
	}, nil
}

type listShopsResponse struct {
	Items     []domain.ShopSummary `json:"items"`
	PageIndex int                  `json:"pageIndex"`
	Limit     int                  `json:"limit"`
}

// ListShops fetches one page of the discovery list. An empty result means
// there is no more data.
func (c *Client) ListShops(ctx context.Context, query domain.DiscoveryQuery) ([]domain.ShopSummary, error) {
	params := url.Values{}
	params.Set("pageIndex", strconv.Itoa(query.PageIndex))
	if query.Coordinates != nil {
		params.Set("latitude", strconv.FormatFloat(query.Coordinates.Latitude, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(query.Coordinates.Longitude, 'f', -1, 64))
	}
	if query.CategoryCode != "" {
		params.Set("categoryCode", query.CategoryCode)
	}
	if query.Keyword != "" {
		params.Set("keyword", query.Keyword)
	}

	var resp listShopsResponse
	if err := c.do(ctx, "list shops", http.MethodGet, "/shops", params, nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Categories fetches the category list. Concurrent callers share one request.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	v, err, _ := c.group.Do("categories", func() (any, error) {
		var categories []domain.Category
		if err := c.do(ctx, "list categories", http.MethodGet, "/categories", nil, nil, false, &categories); err != nil {
			return nil, err
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	categories := v.([]domain.Category)
	return append([]domain.Category(nil), categories...), nil
}

// ShopDetail fetches a shop with its full menu list.
func (c *Client) ShopDetail(ctx context.Context, shopCode string) (domain.ShopDetail, error) {
	var detail domain.ShopDetail
	path := "/shops/" + url.PathEscape(shopCode)
	if err := c.do(ctx, "shop detail", http.MethodGet, path, nil, nil, false, &detail); err != nil {
		return domain.ShopDetail{}, err
	}
	return detail, nil
}

// CreateBooking submits a booking for req.ShopCode.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	var booking domain.Booking
	path := "/shops/" + url.PathEscape(req.ShopCode) + "/bookings"
	if err := c.do(ctx, "create booking", http.MethodPost, path, nil, req, true, &booking); err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body any, auth bool, out any) (err error) {
	ctx, span := tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint.String()),
		attribute.String("request.id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("discovery api request failed",
			zap.String("op", op),
			zap.String("requestId", requestID),
			zap.Error(err),
		)
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ServerError{Op: op, Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var serverErr *domain.ServerError
	return errors.As(err, &serverErr) && serverErr.Status == http.StatusNotFound
}
