// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

// AppName is the product name shown in the tray, notifications and user agents.
const AppName = "Wraith"

var (
	Version    = "dev"
	Channel    = "stable"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent returns the User-Agent sent to update endpoints.
func UserAgent() string {
	return "wraith/" + Version
}
