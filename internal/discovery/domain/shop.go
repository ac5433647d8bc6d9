package domain

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Menu is one bookable menu of a shop as it appears in the discovery list.
type Menu struct {
	MenuName         string `json:"menuName"`
	ReservationCount int    `json:"reservationCount"`
}

// ShopSummary is a single entry of the discovery feed.
// ShopCode is the stable identity; every other field may be refreshed by later fetches.
type ShopSummary struct {
	ShopCode     string      `json:"shopCode"`
	ShopName     string      `json:"shopName"`
	CategoryName string      `json:"categoryName"`
	Location     string      `json:"location"`
	Phone        string      `json:"phone"`
	Coordinates  Coordinates `json:"coordinates"`
	Menus        []Menu      `json:"menus,omitempty"`
	// AdMessage is derived per batch from the active keyword. Empty means absent.
	AdMessage string `json:"adMessage,omitempty"`
}

// Category is an entry of the category lookup.
type Category struct {
	CategoryCode string `json:"categoryCode"`
	CategoryName string `json:"categoryName"`
}

// Filter holds the user-controlled inputs that define the feed contents.
type Filter struct {
	Keyword      string
	CategoryCode string
}

// DiscoveryQuery is built fresh for every page fetch.
type DiscoveryQuery struct {
	PageIndex    int
	Coordinates  *Coordinates
	CategoryCode string
	Keyword      string
}

// FeedState is a snapshot of the feed controller.
type FeedState struct {
	Items     []ShopSummary
	PageIndex int
	HasMore   bool
	Loading   bool
	// Err is the last list fetch failure, cleared by the next successful fetch.
	Err error
}
