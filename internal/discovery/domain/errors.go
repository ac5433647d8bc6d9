package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult reports that a shop has no bookable menu and cannot proceed to booking.
	ErrEmptyResult = errors.New("예약 가능한 메뉴가 없습니다")
	// ErrGeolocationUnavailable covers denied permission, unsupported platforms and timeouts.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	// ErrSuperseded is returned for a response that belongs to an outdated filter generation.
	ErrSuperseded = errors.New("response superseded by a newer request")
)

// NetworkError wraps a transport or decoding failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-success HTTP response.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server responded %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: server responded %d: %s", e.Op, e.Status, e.Message)
}
