package eventbus

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitWithoutSubscriberIsDropped(t *testing.T) {
	bus := New()

	assert.Equal(t, 0, bus.Emit(DeepLink, map[string]any{"url": "wraith://a"}))
	assert.Equal(t, uint64(1), bus.Dropped())

	sub := bus.Subscribe(0)
	defer sub.Close()

	select {
	case ev := <-sub.Events():
		t.Fatalf("late subscriber observed %s emitted before it attached", ev.Name)
	default:
	}
}

func TestEmitFansOutToAllSubscribers(t *testing.T) {
	bus := New()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)
	defer a.Close()
	defer b.Close()

	require.Equal(t, 2, bus.Emit(TrayMenu, map[string]any{"id": "about"}))

	for _, sub := range []*Subscription{a, b} {
		ev := <-sub.Events()
		assert.Equal(t, TrayMenu, ev.Name)
		assert.Equal(t, "about", ev.Payload["id"])
		assert.NotEmpty(t, ev.ID)
	}
}

func TestFullSubscriberDoesNotBlockEmit(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(1)
	defer sub.Close()

	assert.Equal(t, 1, bus.Emit("a", nil))
	assert.Equal(t, 0, bus.Emit("b", nil))
	assert.Equal(t, uint64(1), bus.Dropped())

	ev := <-sub.Events()
	assert.Equal(t, "a", ev.Name)
}

func TestCloseDetachesAndClosesChannel(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(0)
	require.Equal(t, 1, bus.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, bus.Subscribers())

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestConcurrentEmitAndClose(t *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		sub := bus.Subscribe(4)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Emit("tick", nil)
			}
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Subscribers())
}

func TestDesktopNotifier(t *testing.T) {
	var shown []string
	n := NewDesktopNotifier("", true)
	n.notify = func(title, body, icon string) error {
		shown = append(shown, title+"|"+body)
		return nil
	}

	require.NoError(t, n.Notify("Update", "1.2.0 is ready"))
	assert.Equal(t, []string{"Update|1.2.0 is ready"}, shown)

	n.SetEnabled(false)
	require.NoError(t, n.Notify("Hidden", "skipped"))
	assert.Len(t, shown, 1)

	var nerr *NotificationError
	err := n.Notify("", "")
	require.ErrorAs(t, err, &nerr)
	assert.ErrorIs(t, err, ErrEmptyNotification)
}

func TestDesktopNotifierFailureIsReturned(t *testing.T) {
	n := NewDesktopNotifier("", true)
	n.notify = func(title, body, icon string) error {
		return errors.New("dbus unavailable")
	}

	err := n.Notify("t", "b")
	var nerr *NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Contains(t, err.Error(), "dbus unavailable")
}
