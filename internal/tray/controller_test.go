package tray

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/shell"
)

type fakeWindow struct {
	mu  sync.Mutex
	ops []string
}

func (w *fakeWindow) record(op string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ops = append(w.ops, op)
	return nil
}

func (w *fakeWindow) Show() error  { return w.record("show") }
func (w *fakeWindow) Hide() error  { return w.record("hide") }
func (w *fakeWindow) Focus() error { return w.record("focus") }
func (w *fakeWindow) Emit(event string, payload map[string]any) error {
	return w.record("emit:" + event)
}

func (w *fakeWindow) Ops() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.ops...)
}

type fakeView struct {
	window *fakeWindow
}

func (v *fakeView) LookupWindow(name string) (shell.Window, bool) {
	if v.window == nil || name != shell.MainWindow {
		return nil, false
	}
	return v.window, true
}

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (e *exitRecorder) Exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

func (e *exitRecorder) Codes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}

func newTestController(t *testing.T, initial Visibility) (*Controller, *fakeWindow, *exitRecorder, *eventbus.Bus) {
	t.Helper()
	win := &fakeWindow{}
	exit := &exitRecorder{}
	bus := eventbus.New()
	c := NewController(&fakeView{window: win}, bus, Options{InitialVisibility: initial, Exit: exit.Exit})

	items := append(DefaultMenu("Wraith"), MenuItem{ID: "about", Label: "About", Action: ActionCustom})
	_, err := c.Initialize(IconData, items)
	require.NoError(t, err)
	return c, win, exit, bus
}

func TestInitializeErrors(t *testing.T) {
	tests := []struct {
		name  string
		icon  []byte
		items []MenuItem
		kind  SetupErrorKind
	}{
		{name: "empty icon", icon: nil, items: DefaultMenu("W"), kind: IconCreationFailed},
		{name: "unknown icon format", icon: []byte("GIF89a"), items: DefaultMenu("W"), kind: IconCreationFailed},
		{name: "no items", icon: IconData, items: []MenuItem{Separator()}, kind: MenuBuildFailed},
		{name: "duplicate id", icon: IconData, items: []MenuItem{
			{ID: "show", Label: "Show", Action: ActionShow},
			{ID: "show", Label: "Show again", Action: ActionShow},
		}, kind: MenuBuildFailed},
		{name: "missing id", icon: IconData, items: []MenuItem{{Label: "x", Action: ActionCustom}}, kind: MenuBuildFailed},
		{name: "missing label", icon: IconData, items: []MenuItem{{ID: "x", Action: ActionCustom}}, kind: MenuBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&fakeView{}, nil, Options{})
			s, err := c.Initialize(tt.icon, tt.items)
			assert.Nil(t, s)

			var setupErr *SetupError
			require.ErrorAs(t, err, &setupErr)
			assert.Equal(t, tt.kind, setupErr.Kind)
		})
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	c, _, _, _ := newTestController(t, Visible)
	_, err := c.Initialize(IconData, DefaultMenu("Wraith"))

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.ErrorIs(t, err, errSessionCreated)
}

func TestHandleMenuEvent(t *testing.T) {
	c, _, _, _ := newTestController(t, Visible)

	tests := []struct {
		id       string
		expected Command
	}{
		{id: ItemShow, expected: Command{Kind: CommandShow}},
		{id: ItemHide, expected: Command{Kind: CommandHide}},
		{id: ItemQuit, expected: Command{Kind: CommandQuit}},
		{id: "about", expected: Command{Kind: CommandCustom, ID: "about"}},
		{id: "nope", expected: Command{Kind: CommandNone}},
		{id: "", expected: Command{Kind: CommandNone}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.HandleMenuEvent(tt.id))
		})
	}
}

func TestHandleIconEvent(t *testing.T) {
	c := NewController(&fakeView{}, nil, Options{})

	tests := []struct {
		name     string
		event    IconEvent
		expected CommandKind
	}{
		{name: "primary release", event: IconEvent{Button: PrimaryButton, State: Released}, expected: CommandShow},
		{name: "primary press", event: IconEvent{Button: PrimaryButton, State: Pressed}, expected: CommandNone},
		{name: "secondary release", event: IconEvent{Button: SecondaryButton, State: Released}, expected: CommandNone},
		{name: "middle press", event: IconEvent{Button: MiddleButton, State: Pressed}, expected: CommandNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.HandleIconEvent(tt.event).Kind)
		})
	}
}

func TestShowHideIdempotent(t *testing.T) {
	c, win, _, _ := newTestController(t, Visible)

	c.Dispatch(MenuEvent{ID: ItemShow})
	assert.Empty(t, win.Ops(), "show while visible performs no window operation")
	assert.Equal(t, Visible, c.Visibility())

	c.Dispatch(MenuEvent{ID: ItemHide})
	c.Dispatch(MenuEvent{ID: ItemHide})
	assert.Equal(t, []string{"hide"}, win.Ops())
	assert.Equal(t, Hidden, c.Visibility())

	c.Dispatch(IconEvent{Button: PrimaryButton, State: Released})
	c.Dispatch(MenuEvent{ID: ItemShow})
	assert.Equal(t, []string{"hide", "show", "focus"}, win.Ops())
	assert.Equal(t, Visible, c.Visibility())
}

func TestIconPressDoesNotShow(t *testing.T) {
	c, win, _, _ := newTestController(t, Hidden)

	c.Dispatch(IconEvent{Button: PrimaryButton, State: Pressed})
	c.Dispatch(IconEvent{Button: SecondaryButton, State: Released})
	assert.Empty(t, win.Ops())
	assert.Equal(t, Hidden, c.Visibility())
}

func TestMissingWindowKeepsState(t *testing.T) {
	c := NewController(&fakeView{}, nil, Options{InitialVisibility: Hidden, Exit: func(int) {}})
	_, err := c.Initialize(IconData, DefaultMenu("Wraith"))
	require.NoError(t, err)

	c.Dispatch(MenuEvent{ID: ItemShow})
	assert.Equal(t, Hidden, c.Visibility())
}

func TestQuitExitsWithZeroFromAnyState(t *testing.T) {
	for _, initial := range []Visibility{Hidden, Visible} {
		t.Run(initial.String(), func(t *testing.T) {
			c, win, exit, _ := newTestController(t, initial)

			cmd := c.Dispatch(MenuEvent{ID: ItemQuit})
			assert.Equal(t, CommandQuit, cmd.Kind)
			assert.Equal(t, []int{0}, exit.Codes())

			// Terminal: nothing fires afterwards.
			assert.Equal(t, CommandNone, c.Dispatch(MenuEvent{ID: ItemHide}).Kind)
			assert.Equal(t, CommandNone, c.Dispatch(MenuEvent{ID: ItemQuit}).Kind)
			assert.False(t, c.Post(MenuEvent{ID: ItemShow}))
			assert.Empty(t, win.Ops())
			assert.Equal(t, []int{0}, exit.Codes())
		})
	}
}

func TestCustomItemIsForwardedToBus(t *testing.T) {
	c, win, _, bus := newTestController(t, Visible)
	sub := bus.Subscribe(1)
	defer sub.Close()

	cmd := c.Dispatch(MenuEvent{ID: "about"})
	assert.Equal(t, Command{Kind: CommandCustom, ID: "about"}, cmd)
	assert.Empty(t, win.Ops())

	ev := <-sub.Events()
	assert.Equal(t, eventbus.TrayMenu, ev.Name)
	assert.Equal(t, "about", ev.Payload["id"])
}

func TestRunProcessesEventsInOrderUntilQuit(t *testing.T) {
	c, win, exit, _ := newTestController(t, Visible)

	require.True(t, c.Post(MenuEvent{ID: ItemHide}))
	require.True(t, c.Post(CommandEvent{Command: Command{Kind: CommandShow}}))
	require.True(t, c.Post(MenuEvent{ID: ItemHide}))
	require.True(t, c.Post(MenuEvent{ID: ItemQuit}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("Run did not return after quit")
	}

	assert.Equal(t, []string{"hide", "show", "focus", "hide"}, win.Ops())
	assert.Equal(t, []int{0}, exit.Codes())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	c, _, exit, _ := newTestController(t, Visible)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)
	assert.Empty(t, exit.Codes())
}
