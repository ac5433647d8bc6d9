package application

import (
	"context"
	"errors"
	"time"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

const (
	// DefaultPageLimit is the page size used when the client sends none.
	DefaultPageLimit = 10
	// MaxPageLimit caps the page size a client may request.
	MaxPageLimit = 50
)

// ErrInvalidBooking wraps booking input that fails validation.
var ErrInvalidBooking = errors.New("invalid booking")

// ShopRepository is the shop store of the public context.
type ShopRepository interface {
	Find(ctx context.Context, filter ShopFilter) ([]domain.Shop, error)
	FindByCode(ctx context.Context, code string) (*domain.Shop, error)
	IncrementReservation(ctx context.Context, shopCode, menuName string) error
}

// CategoryRepository reads the category master.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
}

// Point is a WGS84 position used to rank shops by distance.
type Point struct {
	Latitude  float64
	Longitude float64
}

// ShopFilter expresses search criteria for shops.
type ShopFilter struct {
	CategoryCode string
	Keyword      string
	Origin       *Point
}

// Paging controls pagination. Page is zero-based.
type Paging struct {
	Page  int
	Limit int
}

// ShopQueryService describes shop read use-cases.
type ShopQueryService interface {
	List(ctx context.Context, filter ShopFilter, paging Paging) ([]domain.Shop, error)
	Detail(ctx context.Context, code string) (*domain.Shop, error)
}

// CategoryQueryService lists categories.
type CategoryQueryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// BookingCommandService handles booking use-cases.
type BookingCommandService interface {
	Book(ctx context.Context, cmd BookCommand) (*domain.Booking, error)
}

// BookCommand captures an authenticated booking request. Memo must already be sanitised.
type BookCommand struct {
	ShopCode   string
	MenuName   string
	ReservedAt time.Time
	Memo       string
	UserID     string
}
