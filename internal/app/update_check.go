package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/buildinfo"
	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/updater"
)

// startupUpdateCheck runs the launch-time update check when the configured
// frequency says one is due. A found update raises a notification and an
// update-available event; nothing is downloaded.
func (a *App) startupUpdateCheck(ctx context.Context) {
	settings := a.Settings()
	if !settings.UpdateCheckDue(time.Now()) {
		return
	}

	available, err := a.updates.CheckForUpdate(ctx)
	if err != nil {
		if !updater.IsKind(err, updater.AlreadyInProgress) {
			log.Warnf("[update] Startup check: %v", err)
		}
		return
	}

	a.markChecked(time.Now().UTC())

	if !available {
		return
	}

	state := a.updates.State()
	a.bus.Emit(eventbus.UpdateAvailable, state.Payload())

	version := ""
	if state.Manifest != nil {
		version = state.Manifest.Version
	}
	body := fmt.Sprintf("Version %s is ready to install.", version)
	if err := a.notifier.Notify(buildinfo.AppName+" update available", body); err != nil {
		log.Warnf("[notify] %v", err)
	}
}

// markChecked records the check time on a copy of the settings, persists it
// and publishes the copy. Readers holding the previous pointer never see it
// change underneath them.
func (a *App) markChecked(now time.Time) {
	a.mu.Lock()
	updated := *a.settings
	updated.Updates.LastChecked = &now
	a.settings = &updated
	a.mu.Unlock()

	if err := config.SaveSettings(&updated); err != nil {
		log.Warnf("[update] Failed to save last_checked: %v", err)
	}
}
