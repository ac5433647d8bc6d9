package mapsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

var seoul = domain.Coordinates{Latitude: 37.5665, Longitude: 126.9780}

func shopAt(code string, lat, lng float64) domain.ShopSummary {
	return domain.ShopSummary{ShopCode: code, Coordinates: domain.Coordinates{Latitude: lat, Longitude: lng}}
}

type feedStub struct {
	listener func(domain.FeedState)
}

func (f *feedStub) Subscribe(fn func(domain.FeedState)) func() {
	f.listener = fn
	return func() { f.listener = nil }
}

func TestSynchronizer_MarkerParity(t *testing.T) {
	canvas := NewCanvas()
	syncer := New(canvas, nil, nil)
	require.NoError(t, syncer.Ready(seoul))

	collections := [][]domain.ShopSummary{
		{shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98)},
		{shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98), shopAt("C", 37.50, 127.03)},
		{},
		{shopAt("D", 35.17, 129.07)},
	}
	for _, shops := range collections {
		require.NoError(t, syncer.OnCollectionChanged(shops))
		require.Equal(t, len(shops), syncer.MarkerCount())
		require.Len(t, canvas.Markers(), len(shops))

		want := make([]string, 0, len(shops))
		for _, s := range shops {
			want = append(want, s.ShopCode)
		}
		require.Equal(t, want, syncer.MarkerCodes())
	}
}

func TestSynchronizer_IdempotentRender(t *testing.T) {
	canvas := NewCanvas()
	syncer := New(canvas, nil, nil)
	require.NoError(t, syncer.Ready(seoul))
	shops := []domain.ShopSummary{shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98)}

	require.NoError(t, syncer.OnCollectionChanged(shops))
	require.NoError(t, syncer.OnCollectionChanged(shops))
	require.Equal(t, 2, syncer.MarkerCount())
	require.Len(t, canvas.Markers(), 2, "previous markers must be detached")
}

func TestSynchronizer_BuffersUntilReadyAndNeverRebuilds(t *testing.T) {
	canvas := NewCanvas()
	syncer := New(canvas, nil, nil)

	require.NoError(t, syncer.OnCollectionChanged([]domain.ShopSummary{shopAt("A", 37.56, 126.97)}))
	require.False(t, syncer.Initialized())
	require.Zero(t, syncer.MarkerCount())

	require.NoError(t, syncer.Ready(seoul))
	require.Equal(t, 1, syncer.MarkerCount())

	busan := domain.Coordinates{Latitude: 35.17, Longitude: 129.07}
	require.NoError(t, syncer.Ready(busan))
	require.Equal(t, 1, canvas.MapsCreated())
	center, ok := syncer.Center()
	require.True(t, ok)
	require.Equal(t, seoul, center)
}

type failingSDK struct{ err error }

func (f failingSDK) NewMap(domain.Coordinates) (Map, error) { return nil, f.err }

func TestSynchronizer_FailedInitCanBeRetried(t *testing.T) {
	syncer := New(failingSDK{err: errors.New("script blocked")}, nil, nil)
	require.ErrorContains(t, syncer.Ready(seoul), "script blocked")
	require.False(t, syncer.Initialized())

	syncer.sdk = NewCanvas()
	require.NoError(t, syncer.Ready(seoul))
	require.True(t, syncer.Initialized())
}

// limitedSDK draws on a canvas but refuses markers beyond limit.
type limitedSDK struct {
	canvas *Canvas
	limit  int
}

func (l *limitedSDK) NewMap(center domain.Coordinates) (Map, error) {
	inner, err := l.canvas.NewMap(center)
	if err != nil {
		return nil, err
	}
	return &limitedMap{inner: inner, sdk: l}, nil
}

type limitedMap struct {
	inner Map
	sdk   *limitedSDK
}

func (m *limitedMap) AddMarker(pos domain.Coordinates) (Marker, error) {
	if len(m.sdk.canvas.Markers()) >= m.sdk.limit {
		return nil, errors.New("marker quota exceeded")
	}
	return m.inner.AddMarker(pos)
}

func TestSynchronizer_FailedRenderLeavesNoPartialMarkers(t *testing.T) {
	canvas := NewCanvas()
	sdk := &limitedSDK{canvas: canvas, limit: 2}
	syncer := New(sdk, nil, nil)
	require.NoError(t, syncer.Ready(seoul))

	err := syncer.OnCollectionChanged([]domain.ShopSummary{
		shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98), shopAt("C", 37.50, 127.03),
	})
	require.ErrorContains(t, err, "add marker C")
	require.Zero(t, syncer.MarkerCount())
	require.Empty(t, canvas.Markers())

	codes, err := syncer.Within(seoul, 100)
	require.NoError(t, err)
	require.Empty(t, codes)

	shops := []domain.ShopSummary{shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98)}
	require.NoError(t, syncer.OnCollectionChanged(shops))
	require.Equal(t, []string{"A", "B"}, syncer.MarkerCodes())
	require.Len(t, canvas.Markers(), 2)
}

func TestSynchronizer_ClickReportsShopCode(t *testing.T) {
	canvas := NewCanvas()
	var selected []string
	syncer := New(canvas, func(code string) { selected = append(selected, code) }, nil)
	require.NoError(t, syncer.Ready(seoul))
	require.NoError(t, syncer.OnCollectionChanged([]domain.ShopSummary{shopAt("A", 37.56, 126.97), shopAt("B", 37.57, 126.98)}))

	markers := canvas.Markers()
	require.NoError(t, canvas.Click(markers[1].ID))
	require.NoError(t, canvas.Click(markers[0].ID))
	require.Equal(t, []string{"B", "A"}, selected)
}

func TestSynchronizer_FollowRendersFeedChanges(t *testing.T) {
	canvas := NewCanvas()
	syncer := New(canvas, nil, nil)
	require.NoError(t, syncer.Ready(seoul))
	feed := &feedStub{}
	unsubscribe := syncer.Follow(feed)

	feed.listener(domain.FeedState{Items: []domain.ShopSummary{shopAt("A", 37.56, 126.97)}})
	require.Equal(t, []string{"A"}, syncer.MarkerCodes())
	first := canvas.Markers()[0].ID

	feed.listener(domain.FeedState{Items: []domain.ShopSummary{shopAt("A", 37.56, 126.97)}, Loading: true})
	require.Equal(t, first, canvas.Markers()[0].ID, "unchanged collection is not re-rendered")

	unsubscribe()
	require.Nil(t, feed.listener)
}

func TestSynchronizer_Within(t *testing.T) {
	syncer := New(NewCanvas(), nil, nil)
	_, err := syncer.Within(seoul, 5)
	require.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, syncer.Ready(seoul))
	require.NoError(t, syncer.OnCollectionChanged([]domain.ShopSummary{
		shopAt("far", 35.17, 129.07),
		shopAt("near", 37.5670, 126.9785),
		shopAt("mid", 37.5400, 127.0000),
	}))

	codes, err := syncer.Within(seoul, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"near", "mid"}, codes)
}
