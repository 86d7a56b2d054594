package events

import (
	"sync"

	"github.com/openregistry/multiasset/internal/log"
)

// Subscriber receives every event published on a Bus.
type Subscriber func(Event)

// Bus fans events out to registered subscribers. Subscribers are invoked
// synchronously in registration order on the emitter's goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber for all future events.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Emit publishes an event to all subscribers. A nil Bus is a valid
// no-op emitter so components can run without observers.
func (b *Bus) Emit(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	log.Events.Debug().Str("event", ev.Kind()).Msg("emit")
	for _, fn := range subs {
		fn(ev)
	}
}
