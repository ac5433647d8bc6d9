package public

import (
	"time"

	disc "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	publicdomain "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

type shopListResponse struct {
	Items     []disc.ShopSummary `json:"items"`
	PageIndex int                `json:"pageIndex"`
	Limit     int                `json:"limit"`
}

type categoryResponse = disc.Category

type createBookingRequest struct {
	MenuName   string    `json:"menuName"`
	ReservedAt time.Time `json:"reservedAt"`
	Memo       string    `json:"memo,omitempty"`
}

type bookingResponse = disc.Booking

// buildShopSummary maps a stored shop to the list wire type.
func buildShopSummary(shop publicdomain.Shop) disc.ShopSummary {
	menus := make([]disc.Menu, 0, len(shop.Menus))
	for _, m := range shop.Menus {
		menus = append(menus, disc.Menu{MenuName: m.Name, ReservationCount: m.ReservationCount})
	}
	return disc.ShopSummary{
		ShopCode:     shop.Code,
		ShopName:     shop.Name,
		CategoryName: shop.CategoryName,
		Location:     shop.Location,
		Phone:        shop.Phone,
		Coordinates:  disc.Coordinates{Latitude: shop.Latitude, Longitude: shop.Longitude},
		Menus:        menus,
	}
}

func buildShopDetail(shop publicdomain.Shop) disc.ShopDetail {
	detailMenus := make([]disc.DetailMenu, 0, len(shop.Menus))
	for _, m := range shop.Menus {
		detailMenus = append(detailMenus, disc.DetailMenu{
			MenuName:         m.Name,
			MenuCategory:     m.Category,
			Price:            m.Price,
			DurationMinutes:  m.DurationMinutes,
			ReservationCount: m.ReservationCount,
		})
	}
	return disc.ShopDetail{
		ShopSummary:   buildShopSummary(shop),
		Description:   shop.Description,
		BusinessHours: shop.BusinessHours,
		DetailMenus:   detailMenus,
	}
}

func buildCategory(category publicdomain.Category) categoryResponse {
	return categoryResponse{CategoryCode: category.Code, CategoryName: category.Name}
}

func buildBooking(booking publicdomain.Booking, loc *time.Location) bookingResponse {
	return bookingResponse{
		ID:         booking.ID,
		ShopCode:   booking.ShopCode,
		MenuName:   booking.MenuName,
		ReservedAt: booking.ReservedAt.In(loc),
		CreatedAt:  booking.CreatedAt.In(loc),
	}
}
