package mapsync

import (
	"errors"
	"sort"
	"sync"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
)

// Canvas is a headless SDK. It records maps and markers so terminals and
// tests can inspect and click them.
type Canvas struct {
	mu      sync.Mutex
	maps    int
	center  domain.Coordinates
	nextID  int
	markers map[int]*canvasMarker
}

// CanvasMarker describes a live marker on a Canvas.
type CanvasMarker struct {
	ID       int
	Position domain.Coordinates
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{markers: make(map[int]*canvasMarker)}
}

// NewMap implements SDK.
func (c *Canvas) NewMap(center domain.Coordinates) (Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maps++
	c.center = center
	return &canvasMap{canvas: c}, nil
}

// MapsCreated returns how many maps were constructed.
func (c *Canvas) MapsCreated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maps
}

// Markers returns the live markers in creation order.
func (c *Canvas) Markers() []CanvasMarker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CanvasMarker, 0, len(c.markers))
	for id, m := range c.markers {
		out = append(out, CanvasMarker{ID: id, Position: m.pos})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Click invokes the click handler of marker id.
func (c *Canvas) Click(id int) error {
	c.mu.Lock()
	m, ok := c.markers[id]
	var fn func()
	if ok {
		fn = m.click
	}
	c.mu.Unlock()

	if !ok {
		return errors.New("no such marker")
	}
	if fn != nil {
		fn()
	}
	return nil
}

type canvasMap struct {
	canvas *Canvas
}

func (m *canvasMap) AddMarker(pos domain.Coordinates) (Marker, error) {
	c := m.canvas
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	marker := &canvasMarker{canvas: c, id: c.nextID, pos: pos}
	c.markers[marker.id] = marker
	return marker, nil
}

type canvasMarker struct {
	canvas *Canvas
	id     int
	pos    domain.Coordinates
	click  func()
}

func (m *canvasMarker) Remove() {
	m.canvas.mu.Lock()
	delete(m.canvas.markers, m.id)
	m.canvas.mu.Unlock()
}

func (m *canvasMarker) OnClick(fn func()) {
	m.canvas.mu.Lock()
	m.click = fn
	m.canvas.mu.Unlock()
}
