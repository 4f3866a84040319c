//go:build notray

package tray

import log "github.com/sirupsen/logrus"

// Available reports whether a native tray backend is compiled in.
const Available = false

// RunNative calls onReady and onExit immediately; there is no tray loop.
func RunNative(onReady, onExit func()) {
	onReady()
	onExit()
}

// QuitNative is a no-op without a tray backend.
func QuitNative() {}

// Render is a no-op without a tray backend.
func Render(c *Controller, s *Session, icon []byte, tooltip string) {
	log.Debugf("[tray] Built without tray support, %d items not rendered", len(s.Items()))
}
