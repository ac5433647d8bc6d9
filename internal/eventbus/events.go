package eventbus

// EventSelectShop asks the orchestrator to open the detail view of a shop.
const EventSelectShop = "select-shop"

// SelectShop is the payload of EventSelectShop.
type SelectShop struct {
	ShopCode string
}

// EmitSelectShop publishes a select-shop event.
func EmitSelectShop(ch Channel, shopCode string) int {
	return ch.Emit(EventSelectShop, SelectShop{ShopCode: shopCode})
}

// OnSelectShop subscribes fn to select-shop events. Payloads of another type
// are dropped.
func OnSelectShop(ch Channel, fn func(SelectShop)) Subscription {
	return ch.On(EventSelectShop, func(payload any) {
		switch ev := payload.(type) {
		case SelectShop:
			fn(ev)
		case *SelectShop:
			if ev != nil {
				fn(*ev)
			}
		}
	})
}
