// Package telemetry reports anonymous update lifecycle events when the user
// has opted in.
package telemetry

import (
	"runtime"
	"sync"

	"github.com/posthog/posthog-go"
	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/buildinfo"
	"github.com/wraith-app/wraith/internal/models"
	"github.com/wraith-app/wraith/internal/updater"
)

// Event names.
const (
	EventAppStarted      = "app_started"
	EventUpdateAvailable = "update_available"
	EventUpdateInstalled = "update_installing"
	EventUpdateFailed    = "update_failed"
)

// enqueuer is the part of posthog.Client the tracker uses.
type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Tracker captures events. A nil or disabled tracker discards everything.
type Tracker struct {
	client     enqueuer
	distinctID string

	mu       sync.Mutex
	lastSeen updater.Phase
}

// New creates a tracker from settings. It returns nil when telemetry is
// disabled or not configured.
func New(cfg models.TelemetryConfig) (*Tracker, error) {
	if !cfg.Enabled || cfg.APIKey == "" || cfg.InstallID == "" {
		return nil, nil
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{Endpoint: cfg.Endpoint})
	if err != nil {
		return nil, err
	}
	return newTracker(client, cfg.InstallID), nil
}

func newTracker(client enqueuer, distinctID string) *Tracker {
	return &Tracker{client: client, distinctID: distinctID}
}

// Capture enqueues one event with the common properties attached.
func (t *Tracker) Capture(event string, props map[string]any) {
	if t == nil {
		return
	}

	properties := posthog.NewProperties().
		Set("app_version", buildinfo.Version).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH)
	for k, v := range props {
		properties.Set(k, v)
	}

	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		log.Debugf("[telemetry] Enqueue %s: %v", event, err)
	}
}

// ObserveUpdate captures the update milestones of a state change. Repeated
// states (e.g. progress within Downloading) are reported once.
func (t *Tracker) ObserveUpdate(s updater.State) {
	if t == nil {
		return
	}

	t.mu.Lock()
	if s.Phase == t.lastSeen {
		t.mu.Unlock()
		return
	}
	t.lastSeen = s.Phase
	t.mu.Unlock()

	props := map[string]any{}
	if s.Manifest != nil {
		props["target_version"] = s.Manifest.Version
	}

	switch s.Phase {
	case updater.PhaseAvailable:
		t.Capture(EventUpdateAvailable, props)
	case updater.PhaseInstalling:
		t.Capture(EventUpdateInstalled, props)
	case updater.PhaseFailed:
		props["reason"] = s.Reason
		t.Capture(EventUpdateFailed, props)
	}
}

// Close flushes queued events.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		log.Debugf("[telemetry] Close: %v", err)
	}
}
