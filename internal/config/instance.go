package config

import (
	"os"

	"github.com/wraith-app/wraith/internal/models"
)

// LoadInstanceInfo loads the running shell's connection info from ~/.wraith/instance.yaml.
// Returns nil if the file doesn't exist.
func LoadInstanceInfo() (*models.InstanceInfo, error) {
	path, err := GlobalInstanceFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.InstanceInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveInstanceInfo saves the shell connection info to ~/.wraith/instance.yaml.
func SaveInstanceInfo(info *models.InstanceInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveInstanceInfo removes the instance.yaml file.
func RemoveInstanceInfo() error {
	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// IsInstanceRunning checks whether another shell process owns instance.yaml.
// A stale file left behind by a dead process is removed. A file recording
// this process's own PID is stale too: it survives an in-place re-exec after
// an update.
func IsInstanceRunning() (bool, *models.InstanceInfo, error) {
	info, err := LoadInstanceInfo()
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	if info.PID == os.Getpid() || !processAlive(info.PID) {
		_ = RemoveInstanceInfo()
		return false, info, nil
	}

	return true, info, nil
}
