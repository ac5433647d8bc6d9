package domain

import "time"

// DetailMenu is a menu as shown in the detail and booking panels.
type DetailMenu struct {
	MenuName         string `json:"menuName"`
	MenuCategory     string `json:"menuCategory,omitempty"`
	Price            int    `json:"price"`
	DurationMinutes  int    `json:"durationMinutes,omitempty"`
	ReservationCount int    `json:"reservationCount"`
}

// ShopDetail is the payload of the shop-detail endpoint.
type ShopDetail struct {
	ShopSummary
	Description   string       `json:"description,omitempty"`
	BusinessHours string       `json:"businessHours,omitempty"`
	DetailMenus   []DetailMenu `json:"detailMenus,omitempty"`
}

// MenuGroup is a set of menus sharing a MenuCategory.
type MenuGroup struct {
	Category string
	Menus    []DetailMenu
}

// GroupMenus groups menus by MenuCategory, keeping first-seen order of
// categories and the original order within each group.
func GroupMenus(menus []DetailMenu) []MenuGroup {
	groups := make([]MenuGroup, 0)
	index := make(map[string]int)
	for _, menu := range menus {
		i, ok := index[menu.MenuCategory]
		if !ok {
			i = len(groups)
			index[menu.MenuCategory] = i
			groups = append(groups, MenuGroup{Category: menu.MenuCategory})
		}
		groups[i].Menus = append(groups[i].Menus, menu)
	}
	return groups
}

// BookingRequest is submitted from the booking panel.
type BookingRequest struct {
	ShopCode   string    `json:"-"`
	MenuName   string    `json:"menuName"`
	ReservedAt time.Time `json:"reservedAt"`
	Memo       string    `json:"memo,omitempty"`
}

// Booking is the confirmation returned by the booking endpoint.
type Booking struct {
	ID         string    `json:"id"`
	ShopCode   string    `json:"shopCode"`
	MenuName   string    `json:"menuName"`
	ReservedAt time.Time `json:"reservedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}
