// Package app is the startup context: it constructs every shell service once
// and runs them for the lifetime of the process.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wraith-app/wraith/internal/buildinfo"
	"github.com/wraith-app/wraith/internal/commands"
	"github.com/wraith-app/wraith/internal/config"
	"github.com/wraith-app/wraith/internal/deeplink"
	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/models"
	"github.com/wraith-app/wraith/internal/server"
	"github.com/wraith-app/wraith/internal/shell"
	"github.com/wraith-app/wraith/internal/telemetry"
	"github.com/wraith-app/wraith/internal/tray"
	"github.com/wraith-app/wraith/internal/updater"
)

// DefaultHost is the loopback address the command endpoint binds to.
const DefaultHost = "127.0.0.1"

// ErrAlreadyRunning is returned by Run when another instance owns instance.yaml.
var ErrAlreadyRunning = errors.New("wraith is already running")

// Options configures an App.
type Options struct {
	// Headless runs without the native tray icon.
	Headless bool
	// Port for the command endpoint; 0 picks a free port.
	Port int
	// Exit terminates the process; os.Exit when nil.
	Exit func(code int)
	// Restart relaunches the process once an update is installed;
	// updater.Restart when nil.
	Restart func() error
}

// App holds the process-wide services. Each exists exactly once.
type App struct {
	opts Options

	mu       sync.RWMutex
	settings *models.Settings

	bus       *eventbus.Bus
	windows   *shell.Registry
	notifier  *eventbus.DesktopNotifier
	tray      *tray.Controller
	updates   *updater.Manager
	links     *deeplink.Dispatcher
	commands  *commands.Handlers
	telemetry *telemetry.Tracker
	server    *server.Server

	stop        context.CancelFunc
	cleanupOnce sync.Once
}

// New constructs the services from settings. Nothing is started.
func New(settings *models.Settings, opts Options) (*App, error) {
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if opts.Restart == nil {
		opts.Restart = updater.Restart
	}

	a := &App{
		opts:     opts,
		settings: settings,
		bus:      eventbus.New(),
		windows:  shell.NewRegistry(),
		notifier: eventbus.NewDesktopNotifier("", settings.Notifications.Enabled),
	}

	downloads, err := config.GlobalUpdatesDir()
	if err != nil {
		return nil, err
	}
	source := updater.NewGitHubSource(updater.GitHubConfig{
		Endpoint:    settings.Updates.Endpoint,
		DownloadDir: downloads,
		UserAgent:   buildinfo.UserAgent(),
	})
	a.updates = updater.NewManager(source, updater.Options{
		CurrentVersion: buildinfo.Version,
		Restart:        a.restart,
		OnStateChange:  a.onUpdateState,
	})

	initial := tray.Visible
	if settings.Window.StartHidden {
		initial = tray.Hidden
	}
	a.tray = tray.NewController(a.windows, a.bus, tray.Options{
		InitialVisibility: initial,
		Exit:              a.exit,
	})

	a.links = deeplink.NewDispatcher(a.bus)
	a.commands = commands.New(a.updates, a.notifier)

	if settings.Telemetry.Enabled && settings.Telemetry.InstallID == "" {
		settings.Telemetry.InstallID = uuid.NewString()
		if err := config.SaveSettings(settings); err != nil {
			log.Warnf("[app] Failed to save install id: %v", err)
		}
	}
	a.telemetry, err = telemetry.New(settings.Telemetry)
	if err != nil {
		log.Warnf("[telemetry] Disabled: %v", err)
	}

	return a, nil
}

// Bus returns the application event bus.
func (a *App) Bus() *eventbus.Bus {
	return a.bus
}

// Updates returns the update manager.
func (a *App) Updates() *updater.Manager {
	return a.updates
}

// Settings returns the current settings.
func (a *App) Settings() *models.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Run starts every service and blocks until ctx is done or the tray quits.
// With a native tray it must be called on the main goroutine.
func (a *App) Run(ctx context.Context) error {
	running, info, err := config.IsInstanceRunning()
	if err != nil {
		return fmt.Errorf("failed to check instance: %w", err)
	}
	if running {
		return fmt.Errorf("%w on port %d (PID %d)", ErrAlreadyRunning, info.Port, info.PID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	a.stop = cancel
	a.mu.Unlock()

	settings := a.Settings()

	// Degraded modes: no deep links, no tray.
	if err := a.links.RegisterScheme(settings.DeepLink.Scheme); err != nil {
		log.Errorf("[deeplink] %v", err)
	}
	session, err := a.tray.Initialize(tray.IconData, tray.DefaultMenu(buildinfo.AppName))
	if err != nil {
		log.Errorf("[tray] %v", err)
	}

	srv, err := server.New(DefaultHost, a.opts.Port, server.NewService(server.Deps{
		Commands: a.commands,
		Links:    a.links,
		Windows:  a.windows,
		Bus:      a.bus,
		Tray:     a.tray,
		Port:     a.serverPort,
	}))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	if err := config.SaveInstanceInfo(models.NewInstanceInfo(DefaultHost, srv.Port(), os.Getpid(), buildinfo.Version)); err != nil {
		srv.Stop()
		return fmt.Errorf("failed to write instance info: %w", err)
	}
	defer a.cleanup()

	log.Infof("[app] %s %s listening on %s:%d (PID %d)", buildinfo.AppName, buildinfo.Version, DefaultHost, srv.Port(), os.Getpid())

	go func() {
		if err := srv.Serve(); err != nil {
			log.Errorf("[server] Serve: %v", err)
			cancel()
		}
	}()
	go a.tray.Run(ctx)
	go a.forwardProgress(ctx)
	go a.startupUpdateCheck(ctx)

	watcher, err := config.WatchSettings(a.onSettingsChanged)
	if err != nil {
		log.Warnf("[config] Settings hot reload unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	a.telemetry.Capture(telemetry.EventAppStarted, nil)

	if session == nil || a.opts.Headless || !tray.Available {
		log.Info("[app] Running without a system tray")
		<-ctx.Done()
		return nil
	}

	// This blocks the calling goroutine until the tray exits.
	tray.RunNative(func() {
		tray.Render(a.tray, session, tray.IconData, buildinfo.AppName)
		go func() {
			<-ctx.Done()
			tray.QuitNative()
		}()
	}, func() {})
	return nil
}

func (a *App) serverPort() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.server == nil {
		return 0
	}
	return a.server.Port()
}

// exit is the tray's Quit path: release the instance file and terminate.
func (a *App) exit(code int) {
	a.cleanup()
	a.mu.RLock()
	stop := a.stop
	a.mu.RUnlock()
	if stop != nil {
		stop()
	}
	a.opts.Exit(code)
}

// restart releases the instance file and the listener, then relaunches the
// updated binary. The old image is already replaced on disk, so a failed
// relaunch exits with code 1.
func (a *App) restart() error {
	a.cleanup()
	if err := a.opts.Restart(); err != nil {
		log.Errorf("[update] Restart failed: %v", err)
		a.exit(1)
		return err
	}
	return nil
}

func (a *App) cleanup() {
	a.cleanupOnce.Do(func() {
		a.mu.RLock()
		srv := a.server
		a.mu.RUnlock()
		if srv != nil {
			srv.Stop()
		}
		a.telemetry.Close()
		if err := config.RemoveInstanceInfo(); err != nil {
			log.Warnf("[app] Failed to remove instance info: %v", err)
		}
	})
}

func (a *App) onUpdateState(s updater.State) {
	a.bus.Emit(eventbus.UpdateState, s.Payload())
	a.telemetry.ObserveUpdate(s)
}

func (a *App) forwardProgress(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-a.updates.Progress():
			a.bus.Emit(eventbus.UpdateProgress, p.Payload())
		}
	}
}

func (a *App) onSettingsChanged(s *models.Settings) {
	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()

	a.notifier.SetEnabled(s.Notifications.Enabled)
	config.SetLogLevel(s.Log.Level)
	log.Debug("[config] Settings reloaded")
}
