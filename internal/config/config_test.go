package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wraith-app/wraith/internal/models"
)

func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	return dir
}

func TestLoadSettingsDefaultsWhenMissing(t *testing.T) {
	useTempHome(t)

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "wraith", settings.DeepLink.Scheme)
	assert.True(t, settings.Notifications.Enabled)
}

func TestSettingsRoundTripKeepsDefaultsForMissingKeys(t *testing.T) {
	home := useTempHome(t)

	partial := "notifications:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, SettingsFileName), []byte(partial), 0644))

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.False(t, settings.Notifications.Enabled)
	assert.Equal(t, "wraith", settings.DeepLink.Scheme, "missing keys keep defaults")

	settings.Window.StartHidden = true
	require.NoError(t, SaveSettings(settings))

	reloaded, err := LoadSettings()
	require.NoError(t, err)
	assert.True(t, reloaded.Window.StartHidden)
	assert.False(t, reloaded.Notifications.Enabled)
}

func TestInstanceInfoLifecycle(t *testing.T) {
	useTempHome(t)

	running, info, err := IsInstanceRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.Nil(t, info)

	// The test binary's parent stands in for another live shell process.
	require.NoError(t, SaveInstanceInfo(models.NewInstanceInfo("localhost", 4242, os.Getppid(), "1.0.0")))

	running, info, err = IsInstanceRunning()
	require.NoError(t, err)
	assert.True(t, running)
	require.NotNil(t, info)
	assert.Equal(t, 4242, info.Port)

	require.NoError(t, RemoveInstanceInfo())
	require.NoError(t, RemoveInstanceInfo(), "removing twice is not an error")
}

func TestStaleInstanceInfoIsRemoved(t *testing.T) {
	useTempHome(t)

	require.NoError(t, SaveInstanceInfo(models.NewInstanceInfo("localhost", 1, -1, "1.0.0")))

	running, info, err := IsInstanceRunning()
	require.NoError(t, err)
	assert.False(t, running)
	require.NotNil(t, info)

	path, err := GlobalInstanceFile()
	require.NoError(t, err)
	assert.False(t, FileExists(path))
}

func TestOwnPIDInstanceInfoIsStale(t *testing.T) {
	useTempHome(t)

	require.NoError(t, SaveInstanceInfo(models.NewInstanceInfo("localhost", 4242, os.Getpid(), "1.0.0")))

	running, info, err := IsInstanceRunning()
	require.NoError(t, err)
	assert.False(t, running)
	require.NotNil(t, info)
	assert.Equal(t, os.Getpid(), info.PID)

	path, err := GlobalInstanceFile()
	require.NoError(t, err)
	assert.False(t, FileExists(path))
}

func TestWatchSettingsReloadsOnSave(t *testing.T) {
	useTempHome(t)

	changes := make(chan *models.Settings, 4)
	w, err := WatchSettings(func(s *models.Settings) { changes <- s })
	require.NoError(t, err)
	defer w.Stop()

	settings := models.NewSettings()
	settings.Log.Level = "debug"
	require.NoError(t, SaveSettings(settings))

	select {
	case got := <-changes:
		assert.Equal(t, "debug", got.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change was not observed")
	}
}
