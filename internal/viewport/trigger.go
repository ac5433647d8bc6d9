// Package viewport turns "the sentinel became visible" into a single callback.
package viewport

import (
	"reflect"
	"sync"
)

// Node identifies the watched sentinel. Values must be comparable.
type Node any

// Observer is the platform intersection primitive. Observe reports the
// visible ratio of node (0 when hidden) until Disconnect is called.
type Observer interface {
	Observe(node Node, fn func(ratio float64))
	Disconnect()
}

// Trigger keeps at most one live Observer and fires its callback once per
// transition of the sentinel from hidden to visible.
//
// The trigger does not know about loading state; callers must skip the
// request while their feed is loading.
type Trigger struct {
	newObserver func() Observer
	callback    func()

	mu         sync.Mutex
	current    Observer
	generation uint64
	visible    bool
}

// New creates a detached trigger.
func New(newObserver func() Observer, callback func()) *Trigger {
	return &Trigger{newObserver: newObserver, callback: callback}
}

// Attach re-subscribes to node, disconnecting the previous subscription
// first. A nil node, including a typed nil pointer, only detaches.
func (t *Trigger) Attach(node Node) {
	t.mu.Lock()
	prev := t.current
	t.current = nil
	t.generation++
	gen := t.generation
	t.visible = false
	var obs Observer
	if !isNilNode(node) {
		obs = t.newObserver()
		t.current = obs
	}
	t.mu.Unlock()

	if prev != nil {
		prev.Disconnect()
	}
	if obs != nil {
		obs.Observe(node, func(ratio float64) { t.handle(gen, ratio) })
	}
}

// Close detaches the trigger. It is equivalent to Attach(nil).
func (t *Trigger) Close() {
	t.Attach(nil)
}

// Attached reports whether a subscription is live.
func (t *Trigger) Attached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil
}

func (t *Trigger) handle(gen uint64, ratio float64) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}
	entering := ratio > 0 && !t.visible
	t.visible = ratio > 0
	t.mu.Unlock()

	if entering {
		t.callback()
	}
}

func isNilNode(node Node) bool {
	if node == nil {
		return true
	}
	switch v := reflect.ValueOf(node); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
