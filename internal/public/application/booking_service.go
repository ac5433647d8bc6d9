package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

// BookingServiceDeps wires the booking service.
type BookingServiceDeps struct {
	Shops       ShopRepository
	Bookings    BookingRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type bookingCommandService struct {
	shops    ShopRepository
	bookings BookingRepository
	clock    func() time.Time
	newID    func() string
}

// NewBookingCommandService creates a booking service.
func NewBookingCommandService(deps BookingServiceDeps) BookingCommandService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &bookingCommandService{
		shops:    deps.Shops,
		bookings: deps.Bookings,
		clock:    clock,
		newID:    newID,
	}
}

// Book validates the command against the shop's menus, stores the booking
// and bumps the menu's reservation counter.
func (s *bookingCommandService) Book(ctx context.Context, cmd BookCommand) (*domain.Booking, error) {
	cmd.ShopCode = strings.TrimSpace(cmd.ShopCode)
	cmd.MenuName = strings.TrimSpace(cmd.MenuName)
	now := s.clock().UTC()

	switch {
	case cmd.UserID == "":
		return nil, fmt.Errorf("%w: user is required", ErrInvalidBooking)
	case cmd.MenuName == "":
		return nil, fmt.Errorf("%w: menuName is required", ErrInvalidBooking)
	case cmd.ReservedAt.IsZero():
		return nil, fmt.Errorf("%w: reservedAt is required", ErrInvalidBooking)
	case !cmd.ReservedAt.After(now):
		return nil, fmt.Errorf("%w: reservedAt must be in the future", ErrInvalidBooking)
	}

	shop, err := s.shops.FindByCode(ctx, cmd.ShopCode)
	if err != nil {
		return nil, err
	}
	if _, ok := shop.FindMenu(cmd.MenuName); !ok {
		return nil, domain.ErrMenuNotFound
	}

	booking := &domain.Booking{
		ID:         s.newID(),
		ShopCode:   shop.Code,
		ShopName:   shop.Name,
		MenuName:   cmd.MenuName,
		UserID:     cmd.UserID,
		Memo:       cmd.Memo,
		ReservedAt: cmd.ReservedAt.UTC(),
		CreatedAt:  now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.shops.IncrementReservation(ctx, shop.Code, cmd.MenuName); err != nil {
		return nil, fmt.Errorf("increment reservation count: %w", err)
	}
	return booking, nil
}
