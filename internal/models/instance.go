package models

import "time"

// InstanceInfo represents the connection information of the running shell.
// This corresponds to ~/.wraith/instance.yaml.
type InstanceInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	AppVer    string    `yaml:"app_version"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewInstanceInfo creates instance info with current values.
func NewInstanceInfo(host string, port, pid int, appVersion string) *InstanceInfo {
	return &InstanceInfo{
		Version:   1,
		Host:      host,
		Port:      port,
		PID:       pid,
		AppVer:    appVersion,
		StartedAt: time.Now().UTC(),
	}
}
