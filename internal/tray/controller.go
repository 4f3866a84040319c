// Package tray implements the tray session: menu model, icon input and the
// event loop translating OS input into window and process commands.
package tray

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/shell"
)

const eventQueue = 64

// Visibility of the main window as tracked by the tray session.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// SetupErrorKind classifies tray setup failures.
type SetupErrorKind int

const (
	IconCreationFailed SetupErrorKind = iota
	MenuBuildFailed
)

func (k SetupErrorKind) String() string {
	if k == IconCreationFailed {
		return "icon creation failed"
	}
	return "menu build failed"
}

// SetupError is returned by Initialize. It is never fatal to the process.
type SetupError struct {
	Kind SetupErrorKind
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("tray setup: %s: %v", e.Kind, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

var (
	errNoIcon         = errors.New("icon is empty")
	errIconFormat     = errors.New("icon is neither PNG nor ICO")
	errSessionCreated = errors.New("tray session already created")
)

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G'}
	icoMagic = []byte{0x00, 0x00, 0x01, 0x00}
)

// Session is the tray menu and the window visibility it controls.
// It is owned and mutated only by its Controller.
type Session struct {
	items      []MenuItem
	actions    map[string]Action
	visibility Visibility
}

// Items returns a copy of the menu items.
func (s *Session) Items() []MenuItem {
	return append([]MenuItem(nil), s.items...)
}

// Options configures a Controller.
type Options struct {
	// InitialVisibility is the window state when the session starts.
	InitialVisibility Visibility
	// Exit terminates the process; os.Exit when nil.
	Exit func(code int)
}

// Controller owns the tray session and converts tray input into commands.
type Controller struct {
	view shell.View
	bus  *eventbus.Bus
	exit func(code int)

	initial Visibility
	events  chan Event

	mu      sync.Mutex
	session *Session
	quit    bool
}

// NewController creates a controller acting on windows of view.
func NewController(view shell.View, bus *eventbus.Bus, opts Options) *Controller {
	exit := opts.Exit
	if exit == nil {
		exit = os.Exit
	}
	return &Controller{
		view:    view,
		bus:     bus,
		exit:    exit,
		initial: opts.InitialVisibility,
		events:  make(chan Event, eventQueue),
	}
}

// Initialize validates the icon and menu and creates the session. It may be
// called once; failures leave the controller without a session.
func (c *Controller) Initialize(icon []byte, items []MenuItem) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil, &SetupError{Kind: MenuBuildFailed, Err: errSessionCreated}
	}
	if err := validateIcon(icon); err != nil {
		return nil, &SetupError{Kind: IconCreationFailed, Err: err}
	}
	if err := validateMenu(items); err != nil {
		return nil, &SetupError{Kind: MenuBuildFailed, Err: err}
	}

	s := &Session{
		items:      append([]MenuItem(nil), items...),
		actions:    make(map[string]Action, len(items)),
		visibility: c.initial,
	}
	for _, item := range items {
		if item.Action != ActionSeparator {
			s.actions[item.ID] = item.Action
		}
	}
	c.session = s
	log.Infof("[tray] Session created with %d menu items", len(s.actions))
	return s, nil
}

func validateIcon(icon []byte) error {
	if len(icon) == 0 {
		return errNoIcon
	}
	if !bytes.HasPrefix(icon, pngMagic) && !bytes.HasPrefix(icon, icoMagic) {
		return errIconFormat
	}
	return nil
}

// Visibility returns the tracked window visibility.
func (c *Controller) Visibility() Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return c.initial
	}
	return c.session.visibility
}

// HandleMenuEvent maps a menu item id to a command. Unknown ids map to
// CommandNone.
func (c *Controller) HandleMenuEvent(id string) Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return Command{}
	}
	action, ok := c.session.actions[id]
	if !ok {
		return Command{}
	}
	switch action {
	case ActionShow:
		return Command{Kind: CommandShow}
	case ActionHide:
		return Command{Kind: CommandHide}
	case ActionQuit:
		return Command{Kind: CommandQuit}
	default:
		return Command{Kind: CommandCustom, ID: id}
	}
}

// HandleIconEvent maps a tray icon click to a command. Only the release of
// the primary button shows the window, so a press that starts a drag does not.
func (c *Controller) HandleIconEvent(ev IconEvent) Command {
	if ev.Button == PrimaryButton && ev.State == Released {
		return Command{Kind: CommandShow}
	}
	return Command{}
}

// Dispatch converts an event into a command and applies it. It returns the
// command that was applied.
func (c *Controller) Dispatch(ev Event) Command {
	if c.terminated() {
		return Command{}
	}

	var cmd Command
	switch e := ev.(type) {
	case MenuEvent:
		cmd = c.HandleMenuEvent(e.ID)
	case IconEvent:
		cmd = c.HandleIconEvent(e)
	case CommandEvent:
		cmd = e.Command
	}
	c.apply(cmd)
	return cmd
}

// Post queues an event for Run without blocking. It reports whether the
// event was accepted.
func (c *Controller) Post(ev Event) bool {
	if c.terminated() {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		log.Warnf("[tray] Event queue full, dropping %T", ev)
		return false
	}
}

// Run processes posted events in arrival order until ctx is done or Quit
// has been applied.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.Dispatch(ev)
			if c.terminated() {
				return
			}
		}
	}
}

func (c *Controller) terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quit
}

func (c *Controller) apply(cmd Command) {
	switch cmd.Kind {
	case CommandShow:
		c.setVisibility(Visible)
	case CommandHide:
		c.setVisibility(Hidden)
	case CommandQuit:
		c.mu.Lock()
		c.quit = true
		c.mu.Unlock()
		log.Info("[tray] Quit requested, exiting")
		c.exit(0)
	case CommandCustom:
		if c.bus != nil {
			c.bus.Emit(eventbus.TrayMenu, map[string]any{"id": cmd.ID})
		}
	}
}

// setVisibility changes the window state. Requesting the current state does
// nothing; a missing window or a failed request leaves the state unchanged.
func (c *Controller) setVisibility(target Visibility) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	if c.session.visibility == target {
		return
	}

	w, ok := c.view.LookupWindow(shell.MainWindow)
	if !ok {
		log.Warnf("[tray] Window %q not attached, cannot %s", shell.MainWindow, target)
		return
	}

	var err error
	if target == Visible {
		err = w.Show()
	} else {
		err = w.Hide()
	}
	if err != nil {
		log.Warnf("[tray] Failed to make window %s: %v", target, err)
		return
	}
	c.session.visibility = target

	if target == Visible {
		if err := w.Focus(); err != nil {
			log.Debugf("[tray] Failed to focus window: %v", err)
		}
	}
}
