package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/models"
)

const settingsDebounce = 100 * time.Millisecond

// SettingsWatcher reloads settings.yaml whenever it changes on disk.
type SettingsWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	onChange  func(*models.Settings)
	done      chan struct{}
	stopOnce  sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

// WatchSettings starts watching the settings file. onChange receives every
// successfully parsed reload; parse errors are logged and skipped.
func WatchSettings(onChange func(*models.Settings)) (*SettingsWatcher, error) {
	if err := EnsureGlobalDir(); err != nil {
		return nil, err
	}
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: SaveYAML replaces the file via rename.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &SettingsWatcher{
		fsWatcher: fsWatcher,
		path:      path,
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// Stop stops the watcher.
func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *SettingsWatcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warnf("[config] Settings watcher error: %v", err)
		}
	}
}

func (w *SettingsWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(settingsDebounce, w.reload)
}

func (w *SettingsWatcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	settings, err := LoadYAMLOrDefault(w.path, models.NewSettings)
	if err != nil {
		log.Warnf("[config] Failed to reload settings: %v", err)
		return
	}
	log.Debugf("[config] Settings reloaded from %s", w.path)
	w.onChange(settings)
}
