// Package events provides an in-process typed publish/subscribe bus.
//
// A Bus decouples the timeline orchestrator from its consumers (UI,
// speech, avatar collaborators). It is an explicit instance passed to
// producers and consumers, never a package-level singleton, so
// independent sessions and tests cannot cross-contaminate.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType tags an event on the bus.
type EventType string

// Event is anything deliverable on the bus.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Handler consumes one event.
type Handler func(Event)

// SubscriptionID identifies one subscription for removal.
type SubscriptionID string

type subscription struct {
	id      SubscriptionID
	handler Handler
	once    bool
}

// Bus is a synchronous typed pub/sub channel. Delivery iterates a
// snapshot of the subscriber list taken at Emit time, so a handler
// that subscribes or unsubscribes during its own invocation never
// corrupts the in-progress delivery.
type Bus struct {
	mu       sync.Mutex
	handlers map[EventType][]subscription
	index    map[SubscriptionID]EventType
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]subscription),
		index:    make(map[SubscriptionID]EventType),
	}
}

// On subscribes a handler to an event type. Handlers for one type are
// invoked in subscription order.
func (b *Bus) On(t EventType, handler Handler) SubscriptionID {
	return b.subscribe(t, handler, false)
}

// Once subscribes a handler that is removed before its first
// delivery runs, so it fires at most once even if the handler itself
// emits more events of the same type.
func (b *Bus) Once(t EventType, handler Handler) SubscriptionID {
	return b.subscribe(t, handler, true)
}

func (b *Bus) subscribe(t EventType, handler Handler, once bool) SubscriptionID {
	id := SubscriptionID(uuid.NewString())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: handler, once: once})
	b.index[id] = t
	return id
}

// Off removes a subscription. It reports whether the id was known.
func (b *Bus) Off(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(id)
}

func (b *Bus) removeLocked(id SubscriptionID) bool {
	t, ok := b.index[id]
	if !ok {
		return false
	}
	delete(b.index, id)

	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			b.handlers[t] = append(append([]subscription{}, subs[:i]...), subs[i+1:]...)
			break
		}
	}
	return true
}

// Emit delivers an event synchronously to every handler subscribed to
// its type at the moment of the call, in subscription order.
func (b *Bus) Emit(e Event) {
	t := e.EventType()

	b.mu.Lock()
	snapshot := b.handlers[t]
	for _, s := range snapshot {
		if s.once {
			b.removeLocked(s.id)
		}
	}
	b.mu.Unlock()

	for _, s := range snapshot {
		s.handler(e)
	}
}

// SubscriberCount returns the number of live subscriptions for a
// type.
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}
