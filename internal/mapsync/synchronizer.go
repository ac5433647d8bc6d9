// Package mapsync keeps map markers in lock-step with the discovery feed.
package mapsync

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/asim/quadtree"
	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

// kmPerDegree approximates the length of one degree of latitude.
const kmPerDegree = 111.32

// SDK is the map rendering engine.
type SDK interface {
	NewMap(center domain.Coordinates) (Map, error)
}

// Map is a constructed map widget.
type Map interface {
	AddMarker(pos domain.Coordinates) (Marker, error)
}

// Marker is a marker attached to a Map.
type Marker interface {
	Remove()
	OnClick(fn func())
}

// FeedSubscriber is satisfied by feed.Controller.
type FeedSubscriber interface {
	Subscribe(fn func(domain.FeedState)) func()
}

// ErrNotReady is returned by queries made before the map exists.
var ErrNotReady = errors.New("map is not initialised")

type liveMarker struct {
	code   string
	pos    domain.Coordinates
	marker Marker
}

// Synchronizer owns the map widget and its markers. The widget is created on
// the first successful Ready call and never rebuilt afterwards. Selection is
// not stored here; marker clicks are reported through onSelect.
type Synchronizer struct {
	sdk      SDK
	onSelect func(shopCode string)
	logger   *zap.Logger

	mu       sync.Mutex
	widget   Map
	center   domain.Coordinates
	markers  []liveMarker
	pending  []domain.ShopSummary
	rendered []domain.ShopSummary
	index    *quadtree.QuadTree
}

// New creates an uninitialised synchronizer.
func New(sdk SDK, onSelect func(shopCode string), logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onSelect == nil {
		onSelect = func(string) {}
	}
	return &Synchronizer{sdk: sdk, onSelect: onSelect, logger: logger}
}

// Ready handles the script-ready signal. The first successful call builds the
// map centred on center and renders the latest collection; later calls are
// ignored, even with a different center.
func (s *Synchronizer) Ready(center domain.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.widget != nil {
		return nil
	}
	widget, err := s.sdk.NewMap(center)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	s.widget = widget
	s.center = center
	s.logger.Debug("map initialised", zap.Float64("lat", center.Latitude), zap.Float64("lng", center.Longitude))
	return s.renderLocked(s.pending)
}

// Initialized reports whether the map exists.
func (s *Synchronizer) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widget != nil
}

// Center returns the center the map was built with.
func (s *Synchronizer) Center() (domain.Coordinates, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center, s.widget != nil
}

// OnCollectionChanged replaces every marker with one marker per shop, in
// order. Before Ready the collection is kept and rendered on initialisation.
func (s *Synchronizer) OnCollectionChanged(shops []domain.ShopSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append([]domain.ShopSummary(nil), shops...)
	if s.widget == nil {
		return nil
	}
	return s.renderLocked(s.pending)
}

// Follow re-renders whenever the feed's collection changes and returns the
// unsubscribe function.
func (s *Synchronizer) Follow(feed FeedSubscriber) func() {
	return feed.Subscribe(func(state domain.FeedState) {
		s.mu.Lock()
		unchanged := s.widget != nil && sameCollection(s.rendered, state.Items)
		s.mu.Unlock()
		if unchanged {
			return
		}
		if err := s.OnCollectionChanged(state.Items); err != nil {
			s.logger.Warn("marker render failed", zap.Error(err))
		}
	})
}

// MarkerCount returns the number of live markers.
func (s *Synchronizer) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// MarkerCodes returns the shop code of every live marker in render order.
func (s *Synchronizer) MarkerCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.markers))
	for _, m := range s.markers {
		codes = append(codes, m.code)
	}
	return codes
}

// Within returns the codes of live markers within radiusKm of center,
// nearest first.
func (s *Synchronizer) Within(center domain.Coordinates, radiusKm float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.widget == nil {
		return nil, ErrNotReady
	}
	if s.index == nil || radiusKm <= 0 {
		return nil, nil
	}

	latHalf := radiusKm / kmPerDegree
	lonHalf := 180.0
	if cos := math.Cos(center.Latitude * math.Pi / 180); cos > 1e-6 {
		lonHalf = math.Min(180, radiusKm/(kmPerDegree*cos))
	}
	boundary := quadtree.NewAABB(
		quadtree.NewPoint(center.Latitude, center.Longitude, nil),
		quadtree.NewPoint(latHalf, lonHalf, nil),
	)

	type hit struct {
		code string
		dist float64
	}
	hits := make([]hit, 0)
	for _, point := range s.index.Search(boundary) {
		m, ok := point.Data().(liveMarker)
		if !ok {
			continue
		}
		if d := domain.DistanceKm(center, m.pos); d <= radiusKm {
			hits = append(hits, hit{code: m.code, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	codes := make([]string, 0, len(hits))
	for _, h := range hits {
		codes = append(codes, h.code)
	}
	return codes, nil
}

func (s *Synchronizer) renderLocked(shops []domain.ShopSummary) error {
	for _, m := range s.markers {
		m.marker.Remove()
	}
	s.markers = make([]liveMarker, 0, len(shops))
	s.rendered = nil
	s.index = quadtree.New(worldBoundary(), 0, nil)

	for _, shop := range shops {
		marker, err := s.widget.AddMarker(shop.Coordinates)
		if err != nil {
			// Leave no partial set behind.
			for _, m := range s.markers {
				m.marker.Remove()
			}
			s.markers = nil
			s.index = quadtree.New(worldBoundary(), 0, nil)
			return fmt.Errorf("add marker %s: %w", shop.ShopCode, err)
		}
		code := shop.ShopCode
		marker.OnClick(func() { s.onSelect(code) })

		live := liveMarker{code: code, pos: shop.Coordinates, marker: marker}
		s.markers = append(s.markers, live)
		s.index.Insert(quadtree.NewPoint(shop.Coordinates.Latitude, shop.Coordinates.Longitude, live))
	}
	s.rendered = append([]domain.ShopSummary(nil), shops...)
	return nil
}

func worldBoundary() *quadtree.AABB {
	return quadtree.NewAABB(quadtree.NewPoint(0, 0, nil), quadtree.NewPoint(90, 180, nil))
}

func sameCollection(a, b []domain.ShopSummary) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ShopCode != b[i].ShopCode || a[i].Coordinates != b[i].Coordinates {
			return false
		}
	}
	return true
}
