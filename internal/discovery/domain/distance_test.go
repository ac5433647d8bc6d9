package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	seoul := Coordinates{Latitude: 37.5665, Longitude: 126.978}
	busan := Coordinates{Latitude: 35.1796, Longitude: 129.0756}

	require.InDelta(t, 325, DistanceKm(seoul, busan), 5)
	require.InDelta(t, DistanceKm(seoul, busan), DistanceKm(busan, seoul), 1e-9)
	require.Zero(t, DistanceKm(seoul, seoul))
}
