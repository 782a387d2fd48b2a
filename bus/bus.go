// ABOUTME: Synchronous fan-out event bus keyed by gateway event name.
// ABOUTME: Subscribers run in subscription order; a panic in one is contained and logged.

package bus

import (
	"log/slog"
	"sync"
)

// Event is one named gateway dispatch with its raw payload.
type Event struct {
	Name    string
	Payload []byte
}

// HandlerFunc consumes a published event.
type HandlerFunc func(Event)

// Bus fans events out to name-keyed subscribers plus wildcard taps.
// Publish is synchronous: when it returns, every subscriber has run.
// The gateway relies on that to finish cache write-through before
// command handlers are dispatched.
type Bus struct {
	mu       sync.RWMutex
	subs     map[string][]HandlerFunc
	wildcard []HandlerFunc
	logger   *slog.Logger
}

// New creates a bus. Pass nil logger for default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]HandlerFunc),
		logger: logger.With("component", "bus"),
	}
}

// Subscribe registers fn for events with the given name.
func (b *Bus) Subscribe(name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], fn)
}

// SubscribeAll registers fn for every published event.
func (b *Bus) SubscribeAll(fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, fn)
}

// Publish delivers ev to matching subscribers, then wildcard taps, in
// subscription order.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	named := b.subs[ev.Name]
	wildcard := b.wildcard
	b.mu.RUnlock()

	for _, fn := range named {
		b.deliver(ev, fn)
	}
	for _, fn := range wildcard {
		b.deliver(ev, fn)
	}
}

func (b *Bus) deliver(ev Event, fn HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				"event", ev.Name,
				"panic", r)
		}
	}()
	fn(ev)
}
