// Package geolocation acquires the user's position exactly once per view.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

// DefaultTimeout bounds the single location request.
const DefaultTimeout = 10 * time.Second

// Status is the provider's outcome so far.
type Status int

const (
	Pending Status = iota
	Available
	Failed
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Locator is the platform location service.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (domain.Coordinates, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (domain.Coordinates, error) {
	return f(ctx)
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Provider issues one request to its Locator and keeps the snapshot.
// No retries and no updates: the first outcome is final.
type Provider struct {
	locator Locator
	timeout time.Duration
	logger  *zap.Logger

	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	status Status
	coords domain.Coordinates
	err    error
}

// NewProvider creates an inactive provider.
func NewProvider(locator Locator, opts ...Option) *Provider {
	p := &Provider{
		locator: locator,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Activate starts the request in the background. Later calls do nothing.
func (p *Provider) Activate(ctx context.Context) {
	p.once.Do(func() {
		go p.resolve(ctx)
	})
}

// Done is closed once the outcome is known.
func (p *Provider) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the outcome is known or ctx ends.
func (p *Provider) Wait(ctx context.Context) (domain.Coordinates, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return domain.Coordinates{}, ctx.Err()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.coords, p.err
}

// Status reports Pending, Available or Failed.
func (p *Provider) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Coordinates returns the position when Available.
func (p *Provider) Coordinates() (domain.Coordinates, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.coords, p.status == Available
}

// Err returns the failure, wrapping domain.ErrGeolocationUnavailable.
func (p *Provider) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

func (p *Provider) resolve(ctx context.Context) {
	defer close(p.done)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type outcome struct {
		pos domain.Coordinates
		err error
	}
	// Buffered so a locator that ignores ctx does not leak a blocked sender.
	result := make(chan outcome, 1)
	go func() {
		pos, err := p.locate(ctx)
		result <- outcome{pos: pos, err: err}
	}()

	var (
		pos domain.Coordinates
		err error
	)
	select {
	case r := <-result:
		pos, err = r.pos, r.err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil && !validCoordinates(pos) {
		err = fmt.Errorf("coordinates out of range: %v,%v", pos.Latitude, pos.Longitude)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		if !errors.Is(err, domain.ErrGeolocationUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrGeolocationUnavailable, err)
		}
		p.status = Failed
		p.err = err
		p.logger.Info("geolocation unavailable, using server default centering", zap.Error(err))
		return
	}
	p.status = Available
	p.coords = pos
}

func (p *Provider) locate(ctx context.Context) (domain.Coordinates, error) {
	if p.locator == nil {
		return domain.Coordinates{}, errors.New("no location service")
	}
	return p.locator.Locate(ctx)
}

func validCoordinates(pos domain.Coordinates) bool {
	return pos.Latitude >= -90 && pos.Latitude <= 90 && pos.Longitude >= -180 && pos.Longitude <= 180
}
