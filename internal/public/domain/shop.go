package domain

import (
	"errors"
	"time"
)

var (
	// ErrShopNotFound is returned when no shop matches the requested code.
	ErrShopNotFound = errors.New("shop not found")
	// ErrMenuNotFound is returned when a booking names a menu the shop does not offer.
	ErrMenuNotFound = errors.New("menu not found")
)

// Shop represents a publicly listed shop.
type Shop struct {
	Code          string
	Name          string
	CategoryCode  string
	CategoryName  string
	Location      string
	Phone         string
	Description   string
	BusinessHours string
	Latitude      float64
	Longitude     float64
	Menus         []Menu
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Menu is a bookable service of a shop.
type Menu struct {
	Name             string
	Category         string
	Price            int
	DurationMinutes  int
	ReservationCount int
}

// FindMenu returns the menu called name.
func (s Shop) FindMenu(name string) (Menu, bool) {
	for _, menu := range s.Menus {
		if menu.Name == name {
			return menu, true
		}
	}
	return Menu{}, false
}

// Category groups shops by business type.
type Category struct {
	Code      string
	Name      string
	SortOrder int
}

// Booking is a confirmed reservation.
type Booking struct {
	ID         string
	ShopCode   string
	ShopName   string
	MenuName   string
	UserID     string
	Memo       string
	ReservedAt time.Time
	CreatedAt  time.Time
}
