// Package commands implements the commands the UI front-end can invoke.
// Handlers return plain Go errors; the transport decides how to present them.
package commands

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/updater"
)

// UpdateManager is the part of the update lifecycle the commands drive.
type UpdateManager interface {
	CheckForUpdate(ctx context.Context) (bool, error)
	Install(ctx context.Context) error
	State() updater.State
	CurrentVersion() string
}

// Handlers holds the services shared by every command.
type Handlers struct {
	updates  UpdateManager
	notifier eventbus.Notifier
}

// New creates the command handlers.
func New(updates UpdateManager, notifier eventbus.Notifier) *Handlers {
	return &Handlers{updates: updates, notifier: notifier}
}

// GetSystemInfo returns the platform, architecture and OS family. The
// result is identical for every call within a process.
func (h *Handlers) GetSystemInfo() SystemInfo {
	return System()
}

// CheckForUpdates reports whether a newer version is published.
func (h *Handlers) CheckForUpdates(ctx context.Context) (bool, error) {
	return h.updates.CheckForUpdate(ctx)
}

// InstallUpdate downloads and installs the update found by the last check,
// then restarts the process.
func (h *Handlers) InstallUpdate(ctx context.Context) error {
	return h.updates.Install(ctx)
}

// UpdateState returns the current update lifecycle state.
func (h *Handlers) UpdateState() updater.State {
	return h.updates.State()
}

// CurrentVersion returns the running version.
func (h *Handlers) CurrentVersion() string {
	return h.updates.CurrentVersion()
}

// ShowNotification surfaces a native notification.
func (h *Handlers) ShowNotification(title, body string) error {
	title = strings.TrimSpace(title)
	if err := h.notifier.Notify(title, body); err != nil {
		log.Warnf("[notify] %v", err)
		return err
	}
	return nil
}
