// Package eventbus forwards named native events to the UI layer.
//
// Delivery is fire-and-forget: an event reaches the subscribers attached at
// the moment Emit runs and nobody else. Events emitted while no subscriber is
// attached are dropped and counted, never buffered for later subscribers.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Event names emitted by the shell.
const (
	DeepLink        = "deep-link"
	TrayMenu        = "tray-menu"
	UpdateAvailable = "update-available"
	UpdateProgress  = "update-progress"
	UpdateState     = "update-state"
	WindowControl   = "window-control"
)

// DefaultBuffer is the per-subscriber queue length used by Subscribe(0).
const DefaultBuffer = 32

// Event is a named payload travelling toward the UI.
type Event struct {
	ID        string
	Name      string
	Payload   map[string]any
	EmittedAt time.Time
}

// Bus is an in-process fan-out of events to attached subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64

	dropped atomic.Uint64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription receives events emitted after it was created.
type Subscription struct {
	id   uint64
	ch   chan Event
	bus  *Bus
	once sync.Once
}

// Events returns the receive side of the subscription. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the bus.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}

// Subscribe attaches a new subscriber with the given queue length
// (DefaultBuffer when buffer <= 0).
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:  b.nextID,
		ch:  make(chan Event, buffer),
		bus: b,
	}
	b.subs[sub.id] = sub
	return sub
}

// Subscribers returns the number of attached subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were dropped, either because no
// subscriber was attached or because a subscriber's queue was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Emit delivers a named payload to every attached subscriber without
// blocking and returns the number of subscribers that received it.
func (b *Bus) Emit(name string, payload map[string]any) int {
	ev := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.subs) == 0 {
		b.dropped.Add(1)
		log.Debugf("[bus] No subscriber for %s, dropped", name)
		return 0
	}

	delivered := 0
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			b.dropped.Add(1)
			log.Warnf("[bus] Subscriber %d is full, dropped %s", sub.id, name)
		}
	}
	return delivered
}
