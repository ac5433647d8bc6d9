package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/eventbus"
)

type fakeDetails struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
}

func (f *fakeDetails) ShopDetail(_ context.Context, code string) (domain.ShopDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, code)
	if err := f.errs[code]; err != nil {
		delete(f.errs, code)
		return domain.ShopDetail{}, err
	}
	return domain.ShopDetail{
		ShopSummary: domain.ShopSummary{ShopCode: code, ShopName: "shop " + code},
		DetailMenus: []domain.DetailMenu{{MenuName: "커트", MenuCategory: "컷", Price: 20000}},
	}, nil
}

type fakeCategories struct {
	categories []domain.Category
	err        error
	calls      int
}

func (f *fakeCategories) Categories(context.Context) ([]domain.Category, error) {
	f.calls++
	return f.categories, f.err
}

type fakeBookings struct {
	err error
	got []domain.BookingRequest
}

func (f *fakeBookings) CreateBooking(_ context.Context, req domain.BookingRequest) (domain.Booking, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return domain.Booking{}, f.err
	}
	return domain.Booking{ID: "b1", ShopCode: req.ShopCode, MenuName: req.MenuName, ReservedAt: req.ReservedAt}, nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *eventbus.Bus, *fakeDetails) {
	t.Helper()
	bus := eventbus.New()
	details := &fakeDetails{errs: map[string]error{}}
	o := New(Config{Bus: bus, Details: details})
	o.Mount(context.Background())
	t.Cleanup(o.Close)
	return o, bus, details
}

func groupsOf(detail domain.ShopDetail) []domain.MenuGroup {
	return domain.GroupMenus(detail.DetailMenus)
}

func TestSelectEventOpensDetail(t *testing.T) {
	o, bus, details := newTestOrchestrator(t)

	eventbus.EmitSelectShop(bus, "S1")

	view := o.State()
	require.Equal(t, ModeDetail, view.Mode)
	require.Equal(t, "S1", view.SelectedShopCode)
	require.NotNil(t, view.Detail)
	require.Equal(t, "shop S1", view.Detail.ShopName)
	require.Equal(t, []string{"S1"}, details.calls)
}

func TestSelectFromDetailSwitchesShop(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	ctx := context.Background()

	require.NoError(t, o.Select(ctx, "S1"))
	require.NoError(t, o.Select(ctx, "S2"))

	view := o.State()
	require.Equal(t, ModeDetail, view.Mode)
	require.Equal(t, "S2", view.Detail.ShopCode)
}

func TestSelectRequiresShopCode(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	require.ErrorIs(t, o.Select(context.Background(), "  "), ErrEmptyShopCode)
	require.Equal(t, ModeList, o.State().Mode)
}

func TestDetailFailureCanBeRetried(t *testing.T) {
	o, _, details := newTestOrchestrator(t)
	boom := errors.New("boom")
	details.errs["S1"] = boom
	ctx := context.Background()

	require.ErrorIs(t, o.Select(ctx, "S1"), boom)
	view := o.State()
	require.Equal(t, ModeDetail, view.Mode)
	require.ErrorIs(t, view.Err, boom)
	require.Nil(t, view.Detail)

	require.NoError(t, o.Retry(ctx))
	view = o.State()
	require.NoError(t, view.Err)
	require.NotNil(t, view.Detail)

	require.ErrorIs(t, o.Retry(ctx), ErrInvalidTransition)
}

func TestShowBookingRejectsShopWithoutMenus(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	require.NoError(t, o.Select(context.Background(), "S1"))

	err := o.ShowBooking(domain.ShopDetail{}, nil)
	require.ErrorIs(t, err, domain.ErrEmptyResult)

	view := o.State()
	require.Equal(t, ModeDetail, view.Mode)
	require.ErrorIs(t, view.Err, domain.ErrEmptyResult)
	require.Nil(t, view.Booking)

	err = o.ShowBooking(domain.ShopDetail{}, []domain.MenuGroup{{Category: "컷"}})
	require.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestBookingRoundTrip(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	require.NoError(t, o.Select(context.Background(), "S1"))
	detail := *o.State().Detail

	require.NoError(t, o.ShowBooking(detail, groupsOf(detail)))
	view := o.State()
	require.Equal(t, ModeBooking, view.Mode)
	require.Equal(t, "S1", view.Booking.Shop.ShopCode)

	require.NoError(t, o.Back())
	require.Equal(t, ModeDetail, o.State().Mode)
	require.Equal(t, "S1", o.State().SelectedShopCode)

	require.NoError(t, o.ShowBooking(detail, groupsOf(detail)))
	require.NoError(t, o.BookingSucceeded(""))

	view = o.State()
	require.Equal(t, ModeList, view.Mode)
	require.Empty(t, view.SelectedShopCode)
	require.Nil(t, view.Detail)
	require.Equal(t, DefaultBookingMessage, view.Message)
}

func TestSelectDuringBookingIsRejected(t *testing.T) {
	o, bus, _ := newTestOrchestrator(t)
	require.NoError(t, o.Select(context.Background(), "S1"))
	detail := *o.State().Detail
	require.NoError(t, o.ShowBooking(detail, groupsOf(detail)))

	eventbus.EmitSelectShop(bus, "S2")

	view := o.State()
	require.Equal(t, ModeBooking, view.Mode)
	require.Equal(t, "S1", view.SelectedShopCode)
}

func TestBackFromDetailClearsSelection(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	require.ErrorIs(t, o.Back(), ErrInvalidTransition)

	require.NoError(t, o.Select(context.Background(), "S1"))
	require.NoError(t, o.Back())

	view := o.State()
	require.Equal(t, ModeList, view.Mode)
	require.Empty(t, view.SelectedShopCode)
}

func TestInvalidTransitions(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	require.ErrorIs(t, o.ShowBooking(domain.ShopDetail{}, []domain.MenuGroup{{Menus: []domain.DetailMenu{{MenuName: "x"}}}}), ErrInvalidTransition)
	require.ErrorIs(t, o.BookingSucceeded("done"), ErrInvalidTransition)
	require.Equal(t, ModeList, o.State().Mode)
}

func TestSubmitBooking(t *testing.T) {
	bus := eventbus.New()
	bookings := &fakeBookings{}
	o := New(Config{Bus: bus, Details: &fakeDetails{errs: map[string]error{}}, Bookings: bookings})
	ctx := context.Background()
	require.NoError(t, o.Select(ctx, "S1"))
	detail := *o.State().Detail
	require.NoError(t, o.ShowBooking(detail, groupsOf(detail)))

	reservedAt := time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)
	booking, err := o.SubmitBooking(ctx, domain.BookingRequest{MenuName: "커트", ReservedAt: reservedAt})
	require.NoError(t, err)
	require.Equal(t, "S1", booking.ShopCode)
	require.Equal(t, "S1", bookings.got[0].ShopCode)

	view := o.State()
	require.Equal(t, ModeList, view.Mode)
	require.Equal(t, "2026-10-20 14:00 커트 예약이 완료되었습니다", view.Message)
}

func TestSubmitBookingFailureStaysInBooking(t *testing.T) {
	bus := eventbus.New()
	boom := errors.New("slot taken")
	o := New(Config{Bus: bus, Details: &fakeDetails{errs: map[string]error{}}, Bookings: &fakeBookings{err: boom}})
	ctx := context.Background()
	require.NoError(t, o.Select(ctx, "S1"))
	detail := *o.State().Detail
	require.NoError(t, o.ShowBooking(detail, groupsOf(detail)))

	_, err := o.SubmitBooking(ctx, domain.BookingRequest{MenuName: "커트"})
	require.ErrorIs(t, err, boom)

	view := o.State()
	require.Equal(t, ModeBooking, view.Mode)
	require.ErrorIs(t, view.Err, boom)
}

func TestMountLoadsCategoriesOnce(t *testing.T) {
	bus := eventbus.New()
	categories := &fakeCategories{categories: []domain.Category{{CategoryCode: "1", CategoryName: "헤어"}}}
	o := New(Config{Bus: bus, Categories: categories})

	o.Mount(context.Background())
	o.Mount(context.Background())
	defer o.Close()

	require.Equal(t, 1, categories.calls)
	require.Equal(t, categories.categories, o.State().Categories)
}

func TestMountKeepsCategoryFailureInState(t *testing.T) {
	bus := eventbus.New()
	boom := errors.New("down")
	o := New(Config{Bus: bus, Categories: &fakeCategories{err: boom}})

	o.Mount(context.Background())
	defer o.Close()

	require.ErrorIs(t, o.State().CategoriesErr, boom)
	require.Equal(t, ModeList, o.State().Mode)
}

func TestCloseUnsubscribes(t *testing.T) {
	o, bus, details := newTestOrchestrator(t)
	o.Close()

	require.Zero(t, eventbus.EmitSelectShop(bus, "S1"))
	require.Equal(t, ModeList, o.State().Mode)
	require.Empty(t, details.calls)
}

func TestSelectHandlerAndOnChange(t *testing.T) {
	bus := eventbus.New()
	var modes []Mode
	o := New(Config{
		Bus:      bus,
		Details:  &fakeDetails{errs: map[string]error{}},
		OnChange: func(v View) { modes = append(modes, v.Mode) },
	})

	o.SelectHandler()("S9")

	require.Equal(t, "S9", o.State().SelectedShopCode)
	require.Equal(t, []Mode{ModeDetail, ModeDetail}, modes)
}
