package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

// DefaultMaxStalledPages bounds how many consecutive pages may add nothing new
// before the feed stops asking for more.
const DefaultMaxStalledPages = 3

// Source is the page-based discovery list endpoint.
type Source interface {
	ListShops(ctx context.Context, query domain.DiscoveryQuery) ([]domain.ShopSummary, error)
}

// CoordinateSource reports the latest known user position, if any.
type CoordinateSource interface {
	Coordinates() (domain.Coordinates, bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for fetch failures and guard decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCoordinates attaches the position used to build queries.
func WithCoordinates(src CoordinateSource) Option {
	return func(c *Controller) {
		c.coords = src
	}
}

// WithMaxStalledPages overrides DefaultMaxStalledPages. Zero disables the guard.
func WithMaxStalledPages(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxStalled = n
		}
	}
}

// Controller owns the discovery feed: the deduplicated shop collection, the
// page cursor, the filter and the loading/has-more flags.
//
// loading acts as a non-reentrant lock: while a fetch is outstanding further
// RequestPage calls are no-ops. Filter changes start a new epoch; responses
// that land for an older epoch are dropped.
type Controller struct {
	source     Source
	coords     CoordinateSource
	logger     *zap.Logger
	maxStalled int

	mu        sync.Mutex
	items     []domain.ShopSummary
	codes     map[string]struct{}
	pageIndex int
	hasMore   bool
	loading   bool
	lastErr   error
	filter    domain.Filter
	epoch     uint64
	stalled   int

	listeners    map[int]func(domain.FeedState)
	nextListener int
	seq          uint64

	// deliverMu serialises listener calls; delivered is the newest seq handed out.
	deliverMu sync.Mutex
	delivered uint64
}

// update is a snapshot tagged with the order in which it was taken.
type update struct {
	seq   uint64
	state domain.FeedState
}

// New creates an empty controller positioned at page 0.
func New(source Source, opts ...Option) *Controller {
	c := &Controller{
		source:     source,
		logger:     zap.NewNop(),
		maxStalled: DefaultMaxStalledPages,
		codes:      make(map[string]struct{}),
		hasMore:    true,
		listeners:  make(map[int]func(domain.FeedState)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount performs the initial fill of an empty feed.
func (c *Controller) Mount(ctx context.Context) error {
	return c.fillIfEmpty(ctx)
}

// RequestPage fetches the next page, or page 0 when reset is set.
// It returns nil without fetching when a fetch is already running or when
// the feed is exhausted and reset is not requested.
func (c *Controller) RequestPage(ctx context.Context, reset bool) error {
	c.mu.Lock()
	if c.loading || (!reset && !c.hasMore) {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	epoch := c.epoch
	pageIndex := c.pageIndex
	if reset {
		pageIndex = 0
	}
	query := domain.DiscoveryQuery{
		PageIndex:    pageIndex,
		CategoryCode: c.filter.CategoryCode,
		Keyword:      c.filter.Keyword,
	}
	pending := c.publishLocked()
	c.mu.Unlock()
	c.notify(pending)

	if c.coords != nil {
		if pos, ok := c.coords.Coordinates(); ok {
			query.Coordinates = &pos
		}
	}

	batch, err := c.source.ListShops(ctx, query)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded page",
			zap.Int("pageIndex", query.PageIndex),
			zap.Uint64("epoch", epoch),
		)
		return domain.ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.lastErr = err
		failed := c.publishLocked()
		c.mu.Unlock()
		c.logger.Warn("shop page fetch failed",
			zap.Int("pageIndex", query.PageIndex),
			zap.Bool("reset", reset),
			zap.Error(err),
		)
		c.notify(failed)
		return err
	}
	c.lastErr = nil
	c.mergeLocked(Annotate(batch, query.Keyword), reset, pageIndex)
	merged := c.publishLocked()
	c.mu.Unlock()

	c.notify(merged)
	return nil
}

// SetFilter replaces keyword and category. A change clears the feed, starts a
// new epoch and triggers a reset fetch.
func (c *Controller) SetFilter(ctx context.Context, filter domain.Filter) error {
	c.mu.Lock()
	if filter == c.filter {
		c.mu.Unlock()
		return nil
	}
	c.filter = filter
	c.epoch++
	c.items = nil
	c.codes = make(map[string]struct{})
	c.pageIndex = 0
	c.hasMore = true
	c.loading = false
	c.lastErr = nil
	c.stalled = 0
	cleared := c.publishLocked()
	c.mu.Unlock()

	c.notify(cleared)
	return c.fillIfEmpty(ctx)
}

// Filter returns the active filter.
func (c *Controller) Filter() domain.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Items returns a copy of the feed contents.
func (c *Controller) Items() []domain.ShopSummary {
	return c.Snapshot().Items
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the listener.
func (c *Controller) Subscribe(fn func(domain.FeedState)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) fillIfEmpty(ctx context.Context) error {
	c.mu.Lock()
	needed := c.hasMore && len(c.items) == 0
	c.mu.Unlock()
	if !needed {
		return nil
	}
	err := c.RequestPage(ctx, true)
	if errors.Is(err, domain.ErrSuperseded) {
		return nil
	}
	return err
}

func (c *Controller) mergeLocked(batch []domain.ShopSummary, reset bool, requested int) {
	added := 0
	if reset {
		c.items = make([]domain.ShopSummary, 0, len(batch))
		c.codes = make(map[string]struct{}, len(batch))
		c.stalled = 0
	}
	for _, shop := range batch {
		if _, dup := c.codes[shop.ShopCode]; dup {
			continue
		}
		c.codes[shop.ShopCode] = struct{}{}
		c.items = append(c.items, shop)
		added++
	}

	c.pageIndex = requested + 1
	c.hasMore = len(batch) > 0

	if reset || !c.hasMore {
		return
	}
	if added > 0 {
		c.stalled = 0
		return
	}
	c.stalled++
	if c.maxStalled > 0 && c.stalled >= c.maxStalled {
		c.hasMore = false
		c.logger.Warn("stopping pagination after pages without new shops",
			zap.Int("stalledPages", c.stalled),
			zap.Int("pageIndex", c.pageIndex),
		)
	}
}

func (c *Controller) snapshotLocked() domain.FeedState {
	return domain.FeedState{
		Items:     append([]domain.ShopSummary(nil), c.items...),
		PageIndex: c.pageIndex,
		HasMore:   c.hasMore,
		Loading:   c.loading,
		Err:       c.lastErr,
	}
}

// publishLocked takes a snapshot for listeners. Callers hold c.mu.
func (c *Controller) publishLocked() update {
	c.seq++
	return update{seq: c.seq, state: c.snapshotLocked()}
}

// notify delivers u unless a newer snapshot has already been delivered, so
// listeners never see the feed go backwards when goroutines race between
// unlocking and notifying. Listeners may read the controller but must not
// fetch or change the filter synchronously.
func (c *Controller) notify(u update) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	if u.seq <= c.delivered {
		return
	}
	c.delivered = u.seq

	c.mu.Lock()
	listeners := make([]func(domain.FeedState), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(u.state)
	}
}
