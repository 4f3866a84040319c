package models

import "time"

// Update check frequencies.
const (
	CheckEveryLaunch = "every_launch"
	CheckDaily       = "daily"
	CheckWeekly      = "weekly"
)

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	Endpoint       string     `yaml:"endpoint"` // GitHub "latest release" API URL
	CheckOnStartup bool       `yaml:"check_on_startup"`
	CheckFrequency string     `yaml:"check_frequency"` // "every_launch" | "daily" | "weekly"
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// NotificationsConfig controls native notifications.
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DeepLinkConfig holds the custom URI scheme handled by this process.
type DeepLinkConfig struct {
	Scheme string `yaml:"scheme"`
}

// WindowConfig holds startup window behavior.
type WindowConfig struct {
	StartHidden bool `yaml:"start_hidden"`
}

// TelemetryConfig holds opt-in product analytics settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	// InstallID is the anonymous id reported with events, generated on first use.
	InstallID string `yaml:"install_id,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty = ~/.wraith/logs/wraith.log, "console" = stderr
}

// Settings represents global application settings.
// This corresponds to ~/.wraith/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	Updates       UpdatesConfig       `yaml:"updates"`
	Notifications NotificationsConfig `yaml:"notifications"`
	DeepLink      DeepLinkConfig      `yaml:"deep_link"`
	Window        WindowConfig        `yaml:"window"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Log           LogConfig           `yaml:"log"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Updates: UpdatesConfig{
			Endpoint:       "https://api.github.com/repos/wraith-app/wraith/releases/latest",
			CheckOnStartup: true,
			CheckFrequency: CheckEveryLaunch,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
		DeepLink: DeepLinkConfig{
			Scheme: "wraith",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// UpdateCheckDue reports whether a startup update check should run at now,
// given the configured frequency and the last check time.
func (s *Settings) UpdateCheckDue(now time.Time) bool {
	if !s.Updates.CheckOnStartup {
		return false
	}
	if s.Updates.LastChecked == nil {
		return true
	}
	since := now.Sub(*s.Updates.LastChecked)
	switch s.Updates.CheckFrequency {
	case CheckDaily:
		return since >= 24*time.Hour
	case CheckWeekly:
		return since >= 7*24*time.Hour
	default:
		return true
	}
}
