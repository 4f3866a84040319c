// Package shell tracks the application windows attached by UI front-ends.
//
// Components never create or destroy windows. They look a window up by its
// stable name and request visibility changes; the front-end that attached the
// window applies them.
package shell

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/eventbus"
)

// MainWindow is the name of the primary application window.
const MainWindow = "main"

// Window control actions sent to the front-end as eventbus.WindowControl.
const (
	ActionShow  = "show"
	ActionHide  = "hide"
	ActionFocus = "focus"
)

const windowQueue = 64

var (
	// ErrWindowClosed is returned by operations on a detached window.
	ErrWindowClosed = errors.New("window detached")
	// ErrWindowBusy is returned when the front-end is not draining its queue.
	ErrWindowBusy = errors.New("window event queue full")
)

// Window is a handle to one application window.
type Window interface {
	Show() error
	Hide() error
	Focus() error
	Emit(event string, payload map[string]any) error
}

// View looks up windows by name.
type View interface {
	LookupWindow(name string) (Window, bool)
}

// Registry is the read-mostly table of attached windows.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]*RemoteWindow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[string]*RemoteWindow)}
}

// LookupWindow implements View.
func (r *Registry) LookupWindow(name string) (Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[name]
	if !ok {
		return nil, false
	}
	return w, true
}

// Attach registers a front-end for the named window. A previous front-end
// attached under the same name is detached.
func (r *Registry) Attach(name string) *RemoteWindow {
	w := &RemoteWindow{
		name:   name,
		events: make(chan eventbus.Event, windowQueue),
		closed: make(chan struct{}),
	}

	r.mu.Lock()
	prev := r.windows[name]
	r.windows[name] = w
	r.mu.Unlock()

	if prev != nil {
		log.Infof("[shell] Window %q re-attached, detaching previous front-end", name)
		prev.close()
	}
	log.Debugf("[shell] Window %q attached", name)
	return w
}

// Detach removes w if it is still the registered window for its name.
func (r *Registry) Detach(w *RemoteWindow) {
	r.mu.Lock()
	if cur, ok := r.windows[w.name]; ok && cur == w {
		delete(r.windows, w.name)
	}
	r.mu.Unlock()
	w.close()
	log.Debugf("[shell] Window %q detached", w.name)
}

// RemoteWindow is a window rendered by an attached front-end. Control
// requests and window-scoped events are queued for that front-end.
type RemoteWindow struct {
	name      string
	events    chan eventbus.Event
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// Name returns the window name.
func (w *RemoteWindow) Name() string {
	return w.name
}

// Events returns the queue the front-end drains.
func (w *RemoteWindow) Events() <-chan eventbus.Event {
	return w.events
}

// Done is closed when the window is detached.
func (w *RemoteWindow) Done() <-chan struct{} {
	return w.closed
}

func (w *RemoteWindow) Show() error {
	return w.control(ActionShow)
}

func (w *RemoteWindow) Hide() error {
	return w.control(ActionHide)
}

func (w *RemoteWindow) Focus() error {
	return w.control(ActionFocus)
}

// Emit queues an event for this window only.
func (w *RemoteWindow) Emit(event string, payload map[string]any) error {
	return w.push(eventbus.Event{
		ID:        uuid.NewString(),
		Name:      event,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
}

func (w *RemoteWindow) control(action string) error {
	return w.Emit(eventbus.WindowControl, map[string]any{
		"window": w.name,
		"action": action,
	})
}

func (w *RemoteWindow) push(ev eventbus.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	select {
	case <-w.closed:
		return ErrWindowClosed
	default:
	}

	select {
	case w.events <- ev:
		return nil
	default:
		return ErrWindowBusy
	}
}

func (w *RemoteWindow) close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		close(w.closed)
		w.mu.Unlock()
	})
}
