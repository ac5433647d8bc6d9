// Package eventbus is a named-event publish/subscribe channel that lets any
// part of the application reach the view orchestrator.
package eventbus

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives an event payload.
type Handler func(payload any)

// Subscription identifies a registered handler.
type Subscription struct {
	Name string
	ID   uuid.UUID
}

// Channel is the contract consumers depend on.
type Channel interface {
	On(name string, handler Handler) Subscription
	Off(sub Subscription)
	Emit(name string, payload any) int
}

type entry struct {
	id      uuid.UUID
	handler Handler
}

// Bus is an in-process Channel. Handlers run synchronously on the emitting
// goroutine, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]entry
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[string][]entry)}
}

// On registers handler for name.
func (b *Bus) On(name string, handler Handler) Subscription {
	sub := Subscription{Name: name, ID: uuid.New()}
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], entry{id: sub.ID, handler: handler})
	b.mu.Unlock()
	return sub
}

// Off removes a subscription. Unknown subscriptions are ignored.
func (b *Bus) Off(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.Name]
	for i, e := range entries {
		if e.id == sub.ID {
			b.handlers[sub.Name] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.handlers[sub.Name]) == 0 {
		delete(b.handlers, sub.Name)
	}
}

// Emit delivers payload to every handler of name and returns how many ran.
func (b *Bus) Emit(name string, payload any) int {
	b.mu.RLock()
	entries := append([]entry(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, e := range entries {
		e.handler(payload)
	}
	return len(entries)
}
