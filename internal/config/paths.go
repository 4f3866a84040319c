// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global Wraith directory.
	GlobalDirName = ".wraith"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// UpdatesDirName holds downloaded update artifacts.
	UpdatesDirName = "updates"

	// HomeEnv overrides the global directory location.
	HomeEnv = "WRAITH_HOME"
)

// File names
const (
	InstanceFileName = "instance.yaml"
	SettingsFileName = "settings.yaml"
	LogFileName      = "wraith.log"
)

// GlobalDir returns the path to the global Wraith directory (~/.wraith/),
// or $WRAITH_HOME when set.
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalPath(elem ...string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// GlobalInstanceFile returns the path to the instance.yaml file.
func GlobalInstanceFile() (string, error) {
	return globalPath(InstanceFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalPath(SettingsFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return globalPath(LogsDirName)
}

// GlobalUpdatesDir returns the directory update artifacts are downloaded into.
func GlobalUpdatesDir() (string, error) {
	return globalPath(UpdatesDirName)
}

// EnsureGlobalDir creates the global Wraith directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
