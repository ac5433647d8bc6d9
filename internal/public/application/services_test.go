package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

type fakeShopRepo struct {
	shops      []domain.Shop
	lastFilter ShopFilter
	increments []string
	incErr     error
}

func (f *fakeShopRepo) Find(_ context.Context, filter ShopFilter) ([]domain.Shop, error) {
	f.lastFilter = filter
	return append([]domain.Shop(nil), f.shops...), nil
}

func (f *fakeShopRepo) FindByCode(_ context.Context, code string) (*domain.Shop, error) {
	for _, shop := range f.shops {
		if shop.Code == code {
			s := shop
			return &s, nil
		}
	}
	return nil, domain.ErrShopNotFound
}

func (f *fakeShopRepo) IncrementReservation(_ context.Context, shopCode, menuName string) error {
	if f.incErr != nil {
		return f.incErr
	}
	f.increments = append(f.increments, shopCode+"/"+menuName)
	return nil
}

type fakeBookingRepo struct {
	created []domain.Booking
	err     error
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *booking)
	return nil
}

type fakeCategoryRepo struct {
	categories []domain.Category
}

func (f *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), f.categories...), nil
}

var base = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func testShops() []domain.Shop {
	return []domain.Shop{
		{Code: "gangnam", Latitude: 37.4979, Longitude: 127.0276, CreatedAt: base.Add(1 * time.Hour)},
		{Code: "jongno", Latitude: 37.5704, Longitude: 126.9921, CreatedAt: base.Add(3 * time.Hour)},
		{Code: "busan", Latitude: 35.1796, Longitude: 129.0756, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func codes(shops []domain.Shop) []string {
	out := make([]string, 0, len(shops))
	for _, s := range shops {
		out = append(out, s.Code)
	}
	return out
}

func TestShopListOrdersNewestFirstWithoutOrigin(t *testing.T) {
	svc := NewShopQueryService(&fakeShopRepo{shops: testShops()})

	shops, err := svc.List(context.Background(), ShopFilter{}, Paging{})
	require.NoError(t, err)
	require.Equal(t, []string{"jongno", "busan", "gangnam"}, codes(shops))
}

func TestShopListOrdersByDistance(t *testing.T) {
	svc := NewShopQueryService(&fakeShopRepo{shops: testShops()})
	cityHall := &Point{Latitude: 37.5665, Longitude: 126.978}

	shops, err := svc.List(context.Background(), ShopFilter{Origin: cityHall}, Paging{})
	require.NoError(t, err)
	require.Equal(t, []string{"jongno", "gangnam", "busan"}, codes(shops))
}

func TestShopListPagination(t *testing.T) {
	svc := NewShopQueryService(&fakeShopRepo{shops: testShops()})
	ctx := context.Background()

	first, err := svc.List(ctx, ShopFilter{}, Paging{Page: 0, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"jongno", "busan"}, codes(first))

	second, err := svc.List(ctx, ShopFilter{}, Paging{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"gangnam"}, codes(second))

	past, err := svc.List(ctx, ShopFilter{}, Paging{Page: 5, Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, past)
	require.Empty(t, past)
}

func TestShopListNormalizesKeyword(t *testing.T) {
	repo := &fakeShopRepo{}
	svc := NewShopQueryService(repo)

	// "커트" spelled with conjoining jamo.
	_, err := svc.List(context.Background(), ShopFilter{Keyword: " \u110f\u1165\u1110\u1173 ", CategoryCode: " 1 "}, Paging{})
	require.NoError(t, err)
	require.Equal(t, "커트", repo.lastFilter.Keyword)
	require.Equal(t, "1", repo.lastFilter.CategoryCode)
}

func TestNormalizePaging(t *testing.T) {
	require.Equal(t, Paging{Page: 0, Limit: DefaultPageLimit}, normalizePaging(Paging{Page: -1}))
	require.Equal(t, Paging{Page: 2, Limit: MaxPageLimit}, normalizePaging(Paging{Page: 2, Limit: 500}))
}

func TestShopDetailRequiresCode(t *testing.T) {
	svc := NewShopQueryService(&fakeShopRepo{shops: testShops()})

	_, err := svc.Detail(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrShopNotFound)

	shop, err := svc.Detail(context.Background(), "busan")
	require.NoError(t, err)
	require.Equal(t, "busan", shop.Code)
}

func TestCategoriesSortedBySortOrder(t *testing.T) {
	svc := NewCategoryQueryService(&fakeCategoryRepo{categories: []domain.Category{
		{Code: "2", Name: "네일", SortOrder: 2},
		{Code: "1", Name: "헤어", SortOrder: 1},
	}})

	categories, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "헤어", categories[0].Name)
}

func newBookingService(shops *fakeShopRepo, bookings *fakeBookingRepo) BookingCommandService {
	return NewBookingCommandService(BookingServiceDeps{
		Shops:       shops,
		Bookings:    bookings,
		Clock:       func() time.Time { return base },
		IDGenerator: func() string { return "01TESTID" },
	})
}

func bookableShop() domain.Shop {
	return domain.Shop{Code: "S1", Name: "헤어살롱", Menus: []domain.Menu{{Name: "커트", Price: 20000}}}
}

func TestBookCreatesAndIncrements(t *testing.T) {
	shops := &fakeShopRepo{shops: []domain.Shop{bookableShop()}}
	bookings := &fakeBookingRepo{}
	svc := newBookingService(shops, bookings)

	booking, err := svc.Book(context.Background(), BookCommand{
		ShopCode:   "S1",
		MenuName:   " 커트 ",
		ReservedAt: base.Add(24 * time.Hour),
		UserID:     "u1",
	})
	require.NoError(t, err)
	require.Equal(t, "01TESTID", booking.ID)
	require.Equal(t, "헤어살롱", booking.ShopName)
	require.Equal(t, base, booking.CreatedAt)
	require.Len(t, bookings.created, 1)
	require.Equal(t, []string{"S1/커트"}, shops.increments)
}

func TestBookValidation(t *testing.T) {
	future := base.Add(time.Hour)
	cases := []struct {
		name string
		cmd  BookCommand
		want error
	}{
		{"missing user", BookCommand{ShopCode: "S1", MenuName: "커트", ReservedAt: future}, ErrInvalidBooking},
		{"missing menu", BookCommand{ShopCode: "S1", ReservedAt: future, UserID: "u"}, ErrInvalidBooking},
		{"missing time", BookCommand{ShopCode: "S1", MenuName: "커트", UserID: "u"}, ErrInvalidBooking},
		{"past time", BookCommand{ShopCode: "S1", MenuName: "커트", ReservedAt: base.Add(-time.Hour), UserID: "u"}, ErrInvalidBooking},
		{"unknown shop", BookCommand{ShopCode: "nope", MenuName: "커트", ReservedAt: future, UserID: "u"}, domain.ErrShopNotFound},
		{"unknown menu", BookCommand{ShopCode: "S1", MenuName: "펌", ReservedAt: future, UserID: "u"}, domain.ErrMenuNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bookings := &fakeBookingRepo{}
			svc := newBookingService(&fakeShopRepo{shops: []domain.Shop{bookableShop()}}, bookings)

			_, err := svc.Book(context.Background(), tc.cmd)
			require.ErrorIs(t, err, tc.want)
			require.Empty(t, bookings.created)
		})
	}
}

func TestBookStoreFailureSkipsIncrement(t *testing.T) {
	shops := &fakeShopRepo{shops: []domain.Shop{bookableShop()}}
	boom := errors.New("write failed")
	svc := newBookingService(shops, &fakeBookingRepo{err: boom})

	_, err := svc.Book(context.Background(), BookCommand{ShopCode: "S1", MenuName: "커트", ReservedAt: base.Add(time.Hour), UserID: "u"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, shops.increments)
}
