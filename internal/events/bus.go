package events

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/valksor/go-planbook/internal/log"
)

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
}

// Bus is an in-process publish/subscribe hub. Delivery is synchronous, so a
// handler sees the store in the state the publisher left it.
type Bus struct {
	mu          sync.RWMutex
	handlers    map[Type][]subscription
	allHandlers []subscription
	nextID      atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers:    make(map[Type][]subscription),
		allHandlers: make([]subscription, 0),
	}
}

func (b *Bus) newID() string {
	return fmt.Sprintf("sub-%d", b.nextID.Add(1))
}

// Subscribe registers a handler for one event type and returns its subscription id.
func (b *Bus) Subscribe(t Type, h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID()
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID()
	b.allHandlers = append(b.allHandlers, subscription{id: id, handler: h})
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, subs := range b.handlers {
		b.handlers[t] = removeSubscription(subs, id)
		if len(b.handlers[t]) == 0 {
			delete(b.handlers, t)
		}
	}
	b.allHandlers = removeSubscription(b.allHandlers, id)
}

func removeSubscription(subs []subscription, id string) []subscription {
	out := subs[:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers a typed event to every matching handler before returning.
// Handlers may subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Eventer) {
	ev := e.ToEvent()
	for _, h := range b.snapshot(ev.Type) {
		b.invoke(h, ev)
	}
}

func (b *Bus) snapshot(t Type) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Handler, 0, len(b.handlers[t])+len(b.allHandlers))
	for _, s := range b.handlers[t] {
		out = append(out, s.handler)
	}
	for _, s := range b.allHandlers {
		out = append(out, s.handler)
	}
	return out
}

func (b *Bus) invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", "type", string(e.Type), "panic", r)
		}
	}()
	h(e)
}
