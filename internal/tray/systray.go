//go:build !notray

package tray

import (
	"runtime"

	"github.com/getlantern/systray"
	log "github.com/sirupsen/logrus"
)

// Available reports whether a native tray backend is compiled in.
const Available = true

// RunNative runs the OS tray loop and blocks until QuitNative is called.
// It must be called from the main goroutine (Cocoa requirement on macOS).
func RunNative(onReady, onExit func()) {
	systray.Run(onReady, onExit)
}

// QuitNative stops the OS tray loop.
func QuitNative() {
	systray.Quit()
}

// Render draws the session onto the native tray and forwards menu clicks to
// the controller's event loop. Must be called from the onReady callback.
func Render(c *Controller, s *Session, icon []byte, tooltip string) {
	if runtime.GOOS == "darwin" {
		systray.SetTemplateIcon(icon, icon)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTooltip(tooltip)

	for _, item := range s.Items() {
		if item.Action == ActionSeparator {
			systray.AddSeparator()
			continue
		}
		mi := systray.AddMenuItem(item.Label, item.Tooltip)
		go forwardClicks(c, item.ID, mi.ClickedCh)
	}
	log.Debugf("[tray] Native menu rendered")
}

// forwardClicks turns one menu item's click channel into MenuEvents.
func forwardClicks(c *Controller, id string, clicked <-chan struct{}) {
	for range clicked {
		if !c.Post(MenuEvent{ID: id}) && c.terminated() {
			return
		}
	}
}
