package deeplink

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wraith-app/wraith/internal/eventbus"
)

func TestRegisterSchemeTwice(t *testing.T) {
	d := NewDispatcher(eventbus.New())
	assert.False(t, d.Registered())

	require.NoError(t, d.RegisterScheme("wraith"))
	require.NoError(t, d.RegisterScheme("wraith"))

	assert.True(t, d.Registered())
	assert.Equal(t, "wraith", d.Scheme())
}

func TestRegisterSchemeKeepsFirst(t *testing.T) {
	d := NewDispatcher(eventbus.New())
	require.NoError(t, d.RegisterScheme("wraith"))
	require.NoError(t, d.RegisterScheme("other"))
	assert.Equal(t, "wraith", d.Scheme())
}

func TestRegisterSchemeInvalid(t *testing.T) {
	for _, name := range []string{"", "1wraith", "wr aith", "wraith://", "wr_aith"} {
		d := NewDispatcher(eventbus.New())
		err := d.RegisterScheme(name)

		var derr *Error
		require.ErrorAs(t, err, &derr, name)
		assert.Equal(t, RegistrationFailed, derr.Kind)
		assert.False(t, d.Registered())
	}
}

func TestRegisterSchemeConcurrent(t *testing.T) {
	d := NewDispatcher(eventbus.New())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.RegisterScheme("wraith"))
		}()
	}
	wg.Wait()
	assert.Equal(t, "wraith", d.Scheme())
}

func TestOnLinkDelivers(t *testing.T) {
	bus := eventbus.New()
	d := NewDispatcher(bus)
	require.NoError(t, d.RegisterScheme("wraith"))

	sub := bus.Subscribe(0)
	defer sub.Close()

	ev, err := d.OnLink("wraith://open/project?id=42#top")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "open", ev.URL.Host)

	select {
	case got := <-sub.Events():
		assert.Equal(t, eventbus.DeepLink, got.Name)
		assert.Equal(t, "wraith://open/project?id=42#top", got.Payload["url"])
		assert.Equal(t, "/project", got.Payload["path"])
		assert.Equal(t, "id=42", got.Payload["query"])
		assert.Equal(t, ev.ID, got.Payload["id"])
	case <-time.After(time.Second):
		t.Fatal("deep link not delivered")
	}

	delivered, dropped := d.Stats()
	assert.Equal(t, uint64(1), delivered)
	assert.Zero(t, dropped)
}

func TestOnLinkNotReplayedToLateSubscriber(t *testing.T) {
	bus := eventbus.New()
	d := NewDispatcher(bus)
	require.NoError(t, d.RegisterScheme("wraith"))

	_, err := d.OnLink("wraith://early")
	require.NoError(t, err)

	sub := bus.Subscribe(0)
	defer sub.Close()

	_, err = d.OnLink("wraith://late")
	require.NoError(t, err)

	got := <-sub.Events()
	assert.Equal(t, "wraith://late", got.Payload["url"])
	select {
	case extra := <-sub.Events():
		t.Fatalf("unexpected event %v", extra.Payload["url"])
	default:
	}

	_, dropped := d.Stats()
	assert.Equal(t, uint64(1), dropped)
}

func TestOnLinkRejects(t *testing.T) {
	d := NewDispatcher(eventbus.New())

	_, err := d.OnLink("wraith://x")
	assert.ErrorIs(t, err, ErrNotRegistered)

	require.NoError(t, d.RegisterScheme("wraith"))
	for _, raw := range []string{"", "https://example.com", "wraith://%zz"} {
		_, err := d.OnLink(raw)
		var derr *Error
		require.ErrorAs(t, err, &derr, raw)
		assert.Equal(t, InvalidLink, derr.Kind)
	}
}

func TestOnLinkSchemeIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(eventbus.New())
	require.NoError(t, d.RegisterScheme("Wraith"))

	_, err := d.OnLink("WRAITH://settings")
	assert.NoError(t, err)
}
