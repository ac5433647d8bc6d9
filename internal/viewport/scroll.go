package viewport

import "sync"

// Viewport is a polling Observer factory: the host reports the visible
// ratio of nodes (for example after every scroll or redraw) and Viewport
// forwards it to the observers watching that node.
type Viewport struct {
	mu        sync.Mutex
	observers map[*scrollObserver]struct{}
}

// NewViewport creates an empty viewport.
func NewViewport() *Viewport {
	return &Viewport{observers: make(map[*scrollObserver]struct{})}
}

// NewObserver returns an Observer bound to v. It matches the factory
// signature expected by New.
func (v *Viewport) NewObserver() Observer {
	return &scrollObserver{viewport: v}
}

// Report forwards ratio to every live observer of node.
func (v *Viewport) Report(node Node, ratio float64) {
	v.mu.Lock()
	targets := make([]func(float64), 0, len(v.observers))
	for obs := range v.observers {
		if obs.node == node {
			targets = append(targets, obs.fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range targets {
		fn(ratio)
	}
}

// Live returns the number of connected observers.
func (v *Viewport) Live() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.observers)
}

// VisibleRatio computes how much of an element spanning [top, top+height)
// is inside a window spanning [windowTop, windowTop+windowHeight).
func VisibleRatio(top, height, windowTop, windowHeight float64) float64 {
	if height <= 0 || windowHeight <= 0 {
		return 0
	}
	start := max(top, windowTop)
	end := min(top+height, windowTop+windowHeight)
	if end <= start {
		return 0
	}
	return (end - start) / height
}

type scrollObserver struct {
	viewport *Viewport
	node     Node
	fn       func(float64)
}

func (o *scrollObserver) Observe(node Node, fn func(ratio float64)) {
	o.viewport.mu.Lock()
	o.node = node
	o.fn = fn
	o.viewport.observers[o] = struct{}{}
	o.viewport.mu.Unlock()
}

func (o *scrollObserver) Disconnect() {
	o.viewport.mu.Lock()
	delete(o.viewport.observers, o)
	o.viewport.mu.Unlock()
}
