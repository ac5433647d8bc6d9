package common

const (
	// MaxBookingRequestBody limits JSON request bodies for booking endpoints.
	MaxBookingRequestBody = 16 << 10
	// MaxBookingMemoRunes limits the free-text memo attached to a booking.
	MaxBookingMemoRunes = 500
)
