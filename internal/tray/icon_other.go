//go:build !windows

package tray

import _ "embed"

// IconData is the tray icon.
//
//go:embed icon.png
var IconData []byte
