// Package orchestrator drives the list / detail / booking views of the shop
// discovery screen.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/eventbus"
)

// Mode is the visible panel.
type Mode string

const (
	ModeList    Mode = "list"
	ModeDetail  Mode = "detail"
	ModeBooking Mode = "booking"
)

// DefaultBookingMessage is shown after a successful booking when the caller
// supplies none.
const DefaultBookingMessage = "예약이 완료되었습니다"

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current mode.
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrEmptyShopCode is returned by Select without a shop code.
	ErrEmptyShopCode = errors.New("shop code is required")
)

// DetailSource is the shop-detail endpoint.
type DetailSource interface {
	ShopDetail(ctx context.Context, shopCode string) (domain.ShopDetail, error)
}

// CategorySource is the category lookup endpoint.
type CategorySource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// BookingSource submits bookings.
type BookingSource interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error)
}

// BookingDraft is the input of the booking panel.
type BookingDraft struct {
	Shop   domain.ShopDetail
	Groups []domain.MenuGroup
}

// View is a snapshot of the orchestrator.
type View struct {
	Mode             Mode
	SelectedShopCode string
	Detail           *domain.ShopDetail
	Booking          *BookingDraft
	// Message is the confirmation surfaced after a booking.
	Message string
	// Err is the inline error of the detail or booking panel.
	Err           error
	Categories    []domain.Category
	CategoriesErr error
}

// Config wires the orchestrator's collaborators. Bus is required.
type Config struct {
	Bus        eventbus.Channel
	Details    DetailSource
	Categories CategorySource
	Bookings   BookingSource
	Logger     *zap.Logger
	// OnChange receives a snapshot after every transition.
	OnChange func(View)
}

// Orchestrator is the list/detail/booking state machine. Selection is owned
// here; the list, the map and the event bus only request it.
type Orchestrator struct {
	bus        eventbus.Channel
	details    DetailSource
	categories CategorySource
	bookings   BookingSource
	logger     *zap.Logger
	onChange   func(View)

	mu       sync.Mutex
	view     View
	sub      *eventbus.Subscription
	mountCtx context.Context
}

// New creates an orchestrator in list mode.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	onChange := cfg.OnChange
	if onChange == nil {
		onChange = func(View) {}
	}
	return &Orchestrator{
		bus:        cfg.Bus,
		details:    cfg.Details,
		categories: cfg.Categories,
		bookings:   cfg.Bookings,
		logger:     logger,
		onChange:   onChange,
		view:       View{Mode: ModeList},
		mountCtx:   context.Background(),
	}
}

// Mount subscribes to select-shop events and loads the categories once.
// Category failures are kept in the view, not returned.
func (o *Orchestrator) Mount(ctx context.Context) {
	o.mu.Lock()
	if o.sub != nil {
		o.mu.Unlock()
		return
	}
	o.mountCtx = ctx
	sub := eventbus.OnSelectShop(o.bus, o.handleSelectEvent)
	o.sub = &sub
	o.mu.Unlock()

	if o.categories == nil {
		return
	}
	categories, err := o.categories.Categories(ctx)
	o.update(func(v *View) {
		v.Categories = categories
		v.CategoriesErr = err
	})
	if err != nil {
		o.logger.Warn("category lookup failed", zap.Error(err))
	}
}

// Close unsubscribes from the event bus. Events emitted afterwards are ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	sub := o.sub
	o.sub = nil
	o.mu.Unlock()

	if sub != nil {
		o.bus.Off(*sub)
	}
}

// SelectHandler returns a callback for list-item and marker clicks.
func (o *Orchestrator) SelectHandler() func(shopCode string) {
	return func(shopCode string) {
		o.mu.Lock()
		ctx := o.mountCtx
		o.mu.Unlock()
		if err := o.Select(ctx, shopCode); err != nil {
			o.logger.Debug("select ignored", zap.String("shopCode", shopCode), zap.Error(err))
		}
	}
}

// State returns a snapshot of the view.
func (o *Orchestrator) State() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Select opens the detail view of shopCode and loads its detail. It is
// allowed from list and detail; a booking in progress is not interrupted.
func (o *Orchestrator) Select(ctx context.Context, shopCode string) error {
	shopCode = strings.TrimSpace(shopCode)
	if shopCode == "" {
		return ErrEmptyShopCode
	}

	o.mu.Lock()
	if o.view.Mode == ModeBooking {
		o.mu.Unlock()
		return fmt.Errorf("%w: select while booking", ErrInvalidTransition)
	}
	o.view.Mode = ModeDetail
	o.view.SelectedShopCode = shopCode
	o.view.Detail = nil
	o.view.Booking = nil
	o.view.Message = ""
	o.view.Err = nil
	snapshot := o.view
	o.mu.Unlock()
	o.onChange(snapshot)

	return o.loadDetail(ctx, shopCode)
}

// Retry reloads the detail after a failure.
func (o *Orchestrator) Retry(ctx context.Context) error {
	o.mu.Lock()
	if o.view.Mode != ModeDetail || o.view.Detail != nil {
		o.mu.Unlock()
		return fmt.Errorf("%w: nothing to retry", ErrInvalidTransition)
	}
	shopCode := o.view.SelectedShopCode
	o.view.Err = nil
	o.mu.Unlock()

	return o.loadDetail(ctx, shopCode)
}

// ShowBooking moves from detail to booking. A shop without any bookable
// menu stays in detail and reports domain.ErrEmptyResult inline.
func (o *Orchestrator) ShowBooking(info domain.ShopDetail, groups []domain.MenuGroup) error {
	o.mu.Lock()
	if o.view.Mode != ModeDetail {
		o.mu.Unlock()
		return fmt.Errorf("%w: booking requires detail", ErrInvalidTransition)
	}
	if !hasBookableMenu(groups) {
		o.view.Err = domain.ErrEmptyResult
		snapshot := o.view
		o.mu.Unlock()
		o.onChange(snapshot)
		return domain.ErrEmptyResult
	}
	o.view.Mode = ModeBooking
	o.view.Booking = &BookingDraft{Shop: info, Groups: groups}
	o.view.Err = nil
	snapshot := o.view
	o.mu.Unlock()

	o.onChange(snapshot)
	return nil
}

// SubmitBooking sends req and, on success, finishes the booking flow.
// Failures stay in booking mode with an inline error so the user can resubmit.
func (o *Orchestrator) SubmitBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	o.mu.Lock()
	if o.view.Mode != ModeBooking || o.bookings == nil {
		o.mu.Unlock()
		return domain.Booking{}, fmt.Errorf("%w: no booking in progress", ErrInvalidTransition)
	}
	if req.ShopCode == "" {
		req.ShopCode = o.view.SelectedShopCode
	}
	o.mu.Unlock()

	booking, err := o.bookings.CreateBooking(ctx, req)
	if err != nil {
		o.update(func(v *View) {
			if v.Mode == ModeBooking {
				v.Err = err
			}
		})
		o.logger.Warn("booking failed", zap.String("shopCode", req.ShopCode), zap.Error(err))
		return domain.Booking{}, err
	}

	message := fmt.Sprintf("%s %s 예약이 완료되었습니다", booking.ReservedAt.Format("2006-01-02 15:04"), booking.MenuName)
	return booking, o.BookingSucceeded(message)
}

// BookingSucceeded returns to the list, clears the selection and surfaces message.
func (o *Orchestrator) BookingSucceeded(message string) error {
	if strings.TrimSpace(message) == "" {
		message = DefaultBookingMessage
	}
	o.mu.Lock()
	if o.view.Mode != ModeBooking {
		o.mu.Unlock()
		return fmt.Errorf("%w: no booking in progress", ErrInvalidTransition)
	}
	o.view.Mode = ModeList
	o.view.SelectedShopCode = ""
	o.view.Detail = nil
	o.view.Booking = nil
	o.view.Err = nil
	o.view.Message = message
	snapshot := o.view
	o.mu.Unlock()

	o.onChange(snapshot)
	return nil
}

// Back goes booking → detail or detail → list.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	switch o.view.Mode {
	case ModeBooking:
		o.view.Mode = ModeDetail
		o.view.Booking = nil
		o.view.Err = nil
	case ModeDetail:
		o.view.Mode = ModeList
		o.view.SelectedShopCode = ""
		o.view.Detail = nil
		o.view.Err = nil
	default:
		o.mu.Unlock()
		return fmt.Errorf("%w: already on the list", ErrInvalidTransition)
	}
	snapshot := o.view
	o.mu.Unlock()

	o.onChange(snapshot)
	return nil
}

func (o *Orchestrator) handleSelectEvent(ev eventbus.SelectShop) {
	o.mu.Lock()
	mounted := o.sub != nil
	ctx := o.mountCtx
	o.mu.Unlock()
	if !mounted {
		return
	}
	if err := o.Select(ctx, ev.ShopCode); err != nil {
		o.logger.Debug("select event not applied", zap.String("shopCode", ev.ShopCode), zap.Error(err))
	}
}

func (o *Orchestrator) loadDetail(ctx context.Context, shopCode string) error {
	if o.details == nil {
		return nil
	}
	detail, err := o.details.ShopDetail(ctx, shopCode)

	o.mu.Lock()
	if o.view.Mode != ModeDetail || o.view.SelectedShopCode != shopCode {
		o.mu.Unlock()
		return nil
	}
	if err != nil {
		o.view.Err = err
	} else {
		o.view.Detail = &detail
	}
	snapshot := o.view
	o.mu.Unlock()
	o.onChange(snapshot)

	if err != nil {
		o.logger.Warn("shop detail fetch failed", zap.String("shopCode", shopCode), zap.Error(err))
	}
	return err
}

func (o *Orchestrator) update(fn func(*View)) {
	o.mu.Lock()
	fn(&o.view)
	snapshot := o.view
	o.mu.Unlock()
	o.onChange(snapshot)
}

func hasBookableMenu(groups []domain.MenuGroup) bool {
	for _, g := range groups {
		if len(g.Menus) > 0 {
			return true
		}
	}
	return false
}
