// Package deeplink registers the application's URI scheme and forwards link
// activations to the event bus.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/eventbus"
)

// schemePattern is the RFC 3986 scheme grammar: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)

const (
	unregistered int32 = iota
	registered
)

// ErrorKind classifies deep-link failures.
type ErrorKind int

const (
	RegistrationFailed ErrorKind = iota
	InvalidLink
)

func (k ErrorKind) String() string {
	if k == RegistrationFailed {
		return "scheme registration failed"
	}
	return "invalid deep link"
}

// Error is returned by Dispatcher operations. None are fatal.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrNotRegistered = errors.New("no scheme registered")
	errEmptyLink     = errors.New("link is empty")
)

// Event is one link activation.
type Event struct {
	ID         string
	RawURI     string
	URL        *url.URL
	ReceivedAt time.Time
}

// Payload returns the bus representation of the event.
func (e Event) Payload() map[string]any {
	p := map[string]any{
		"id":          e.ID,
		"url":         e.RawURI,
		"received_at": e.ReceivedAt.Format(time.RFC3339Nano),
	}
	if e.URL != nil {
		p["scheme"] = e.URL.Scheme
		p["host"] = e.URL.Host
		p["path"] = e.URL.Path
		p["query"] = e.URL.RawQuery
		p["fragment"] = e.URL.Fragment
	}
	return p
}

// Dispatcher holds the process scheme registration. The registration moves
// from unregistered to registered once and is never cleared.
type Dispatcher struct {
	bus *eventbus.Bus

	state  atomic.Int32
	scheme string
	once   sync.Once

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewDispatcher creates an unregistered dispatcher emitting on bus.
func NewDispatcher(bus *eventbus.Bus) *Dispatcher {
	return &Dispatcher{bus: bus}
}

// RegisterScheme claims name as the process scheme. Only the first valid
// call has an effect; later calls are no-ops.
func (d *Dispatcher) RegisterScheme(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !schemePattern.MatchString(name) {
		return &Error{Kind: RegistrationFailed, Err: fmt.Errorf("invalid scheme %q", name)}
	}

	won := false
	d.once.Do(func() {
		d.scheme = name
		d.state.Store(registered)
		won = true
	})
	if !won {
		if d.Scheme() != name {
			log.Warnf("[deeplink] Scheme %q already registered, ignoring %q", d.Scheme(), name)
		}
		return nil
	}

	log.Infof("[deeplink] Registered scheme %s://", name)
	return nil
}

// Registered reports whether a scheme has been registered.
func (d *Dispatcher) Registered() bool {
	return d.state.Load() == registered
}

// Scheme returns the registered scheme, or "" before registration.
func (d *Dispatcher) Scheme() string {
	if !d.Registered() {
		return ""
	}
	return d.scheme
}

// Stats returns how many activations reached a subscriber and how many
// were dropped for lack of one.
func (d *Dispatcher) Stats() (delivered, dropped uint64) {
	return d.delivered.Load(), d.dropped.Load()
}

// OnLink parses an activation and forwards it to the bus. Delivery is
// at-most-once: with no subscriber attached the event is dropped.
func (d *Dispatcher) OnLink(raw string) (Event, error) {
	if !d.Registered() {
		return Event{}, &Error{Kind: InvalidLink, Err: ErrNotRegistered}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Event{}, &Error{Kind: InvalidLink, Err: errEmptyLink}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Event{}, &Error{Kind: InvalidLink, Err: err}
	}
	if !strings.EqualFold(u.Scheme, d.scheme) {
		return Event{}, &Error{Kind: InvalidLink, Err: fmt.Errorf("scheme %q does not match %q", u.Scheme, d.scheme)}
	}

	ev := Event{
		ID:         uuid.NewString(),
		RawURI:     raw,
		URL:        u,
		ReceivedAt: time.Now().UTC(),
	}

	if d.bus.Emit(eventbus.DeepLink, ev.Payload()) == 0 {
		d.dropped.Add(1)
		log.Warnf("[deeplink] No subscriber attached, dropped %s", raw)
	} else {
		d.delivered.Add(1)
		log.Debugf("[deeplink] Forwarded %s", raw)
	}
	return ev, nil
}
