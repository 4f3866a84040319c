//go:build windows

package tray

import _ "embed"

// IconData is the tray icon in the format the Windows shell expects.
//
//go:embed icon.ico
var IconData []byte
