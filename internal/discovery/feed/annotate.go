package feed

import (
	"fmt"
	"strings"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

const adMessageFormat = "최근 %s %d회 예약"

// Annotate returns a copy of batch with AdMessage recomputed for keyword.
//
// The most reserved menu whose name contains keyword (case-sensitive) is found
// across this batch only; every shop owning a matching menu with that count
// gets the message. Nothing is annotated when keyword is empty or the best
// count is zero.
func Annotate(batch []domain.ShopSummary, keyword string) []domain.ShopSummary {
	out := make([]domain.ShopSummary, len(batch))
	for i, shop := range batch {
		shop.Menus = append([]domain.Menu(nil), shop.Menus...)
		shop.AdMessage = ""
		out[i] = shop
	}
	if keyword == "" {
		return out
	}

	best := 0
	for _, shop := range out {
		for _, menu := range shop.Menus {
			if strings.Contains(menu.MenuName, keyword) && menu.ReservationCount > best {
				best = menu.ReservationCount
			}
		}
	}
	if best <= 0 {
		return out
	}

	for i := range out {
		for _, menu := range out[i].Menus {
			if menu.ReservationCount == best && strings.Contains(menu.MenuName, keyword) {
				out[i].AdMessage = fmt.Sprintf(adMessageFormat, menu.MenuName, best)
				break
			}
		}
	}
	return out
}
