// Package updater drives the check → download → install → restart cycle
// against a remote update source.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

const progressBuffer = 64

// errNoManifestVersion is returned when the source publishes a manifest
// without a version.
var errNoManifestVersion = errors.New("manifest has no version")

// Options configures a Manager.
type Options struct {
	// CurrentVersion is the version of the running binary.
	CurrentVersion string
	// Restart relaunches the process after a successful install. On success
	// it normally does not return.
	Restart func() error
	// OnStateChange observes every state transition. It must not block.
	OnStateChange func(State)
}

// Manager owns the single update State of the process. Only one flow
// (check or install) runs at a time; overlapping calls fail with
// AlreadyInProgress instead of queueing.
type Manager struct {
	source   Source
	current  string
	restart  func() error
	observer func(State)

	inFlight atomic.Bool
	progress chan Progress

	mu    sync.RWMutex
	state State
	// found is the update reported by the last check. It outlives a failed
	// install so a retry can go straight back to downloading.
	found *Manifest
}

// NewManager creates a manager in the Idle state.
func NewManager(source Source, opts Options) *Manager {
	restart := opts.Restart
	if restart == nil {
		restart = Restart
	}
	return &Manager{
		source:   source,
		current:  opts.CurrentVersion,
		restart:  restart,
		observer: opts.OnStateChange,
		progress: make(chan Progress, progressBuffer),
	}
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentVersion returns the version of the running binary.
func (m *Manager) CurrentVersion() string {
	return m.current
}

// Progress returns the download progress stream. Reports are dropped when
// the consumer falls behind; the ones delivered are non-decreasing.
func (m *Manager) Progress() <-chan Progress {
	return m.progress
}

// CheckForUpdate asks the source for its latest manifest and reports
// whether it is newer than the running version. Nothing is downloaded.
func (m *Manager) CheckForUpdate(ctx context.Context) (bool, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return false, &Error{Kind: AlreadyInProgress}
	}
	defer m.inFlight.Store(false)

	m.resetFailed(false)
	m.setFound(nil)
	m.setState(State{Phase: PhaseChecking})

	manifest, err := m.source.Check(ctx)
	if err != nil {
		return false, m.fail(CheckFailed, err)
	}
	if manifest == nil {
		log.Infof("[update] No release published, up to date (v%s)", m.current)
		m.setState(State{Phase: PhaseIdle})
		return false, nil
	}
	if manifest.Version == "" {
		return false, m.fail(CheckFailed, errNoManifestVersion)
	}

	newer, err := IsNewer(m.current, manifest.Version)
	if err != nil {
		return false, m.fail(CheckFailed, err)
	}
	if !newer {
		log.Infof("[update] Up to date (v%s, latest v%s)", m.current, manifest.Version)
		m.setState(State{Phase: PhaseIdle})
		return false, nil
	}

	log.Infof("[update] Update available: v%s → v%s", m.current, manifest.Version)
	found := *manifest
	m.setFound(&found)
	m.setState(State{Phase: PhaseAvailable, Manifest: &found})
	return true, nil
}

// Install downloads and applies the update found by the most recent check,
// then restarts the process. Without an available update it does nothing.
// After a failed install the same update is offered again.
// Cancelling ctx aborts the download or install and leaves the manager in
// the Failed state. Partially applied changes are not rolled back here.
func (m *Manager) Install(ctx context.Context) error {
	if !m.inFlight.CompareAndSwap(false, true) {
		return &Error{Kind: AlreadyInProgress}
	}
	defer m.inFlight.Store(false)

	m.resetFailed(true)

	current := m.State()
	if current.Phase != PhaseAvailable || current.Manifest == nil {
		log.Debugf("[update] Install requested with no update available (%s)", current.Phase)
		return nil
	}
	manifest := *current.Manifest

	m.setState(State{Phase: PhaseDownloading, Manifest: &manifest})
	log.Infof("[update] Downloading v%s (%d bytes)", manifest.Version, manifest.Size)

	var last int64
	artifact, err := m.source.Download(ctx, manifest, func(downloaded, total int64) {
		if downloaded < last {
			return
		}
		last = downloaded
		if total <= 0 {
			total = manifest.Size
		}
		m.reportProgress(manifest, downloaded, total)
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return m.fail(DownloadFailed, err)
	}

	m.setState(State{Phase: PhaseReadyToInstall, Manifest: &manifest})
	m.setState(State{Phase: PhaseInstalling, Manifest: &manifest})
	log.Infof("[update] Installing v%s from %s", manifest.Version, artifact.Path)

	if err := ctx.Err(); err != nil {
		discard(artifact)
		return m.fail(InstallFailed, err)
	}
	if err := m.source.Install(ctx, artifact); err != nil {
		discard(artifact)
		return m.fail(InstallFailed, err)
	}

	log.Infof("[update] Installed v%s, restarting", manifest.Version)
	if err := m.restart(); err != nil {
		return m.fail(InstallFailed, fmt.Errorf("restart: %w", err))
	}
	return nil
}

func (m *Manager) reportProgress(manifest Manifest, downloaded, total int64) {
	p := Progress{
		Version:    manifest.Version,
		Downloaded: downloaded,
		Total:      total,
		Percent:    percentOf(downloaded, total),
	}

	m.mu.Lock()
	changed := p.Percent != m.state.Percent
	if changed {
		m.state.Percent = p.Percent
	}
	snapshot := m.state
	m.mu.Unlock()

	if changed && m.observer != nil {
		m.observer(snapshot)
	}

	select {
	case m.progress <- p:
	default:
	}
}

// resetFailed moves Failed back to Idle; it is the only backward transition
// and happens only on an explicit retry. With reoffer set, an update found by
// the last check becomes Available again.
func (m *Manager) resetFailed(reoffer bool) {
	if m.State().Phase != PhaseFailed {
		return
	}
	m.setState(State{Phase: PhaseIdle})

	m.mu.RLock()
	found := m.found
	m.mu.RUnlock()
	if reoffer && found != nil {
		manifest := *found
		m.setState(State{Phase: PhaseAvailable, Manifest: &manifest})
	}
}

func (m *Manager) setFound(manifest *Manifest) {
	m.mu.Lock()
	m.found = manifest
	m.mu.Unlock()
}

// discard removes a downloaded artifact that will not be installed.
func discard(a Artifact) {
	if a.Path == "" {
		return
	}
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		log.Warnf("[update] Failed to remove %s: %v", a.Path, err)
	}
}

func (m *Manager) fail(kind ErrorKind, err error) error {
	uerr := &Error{Kind: kind, Err: err}
	log.Errorf("[update] %v", uerr)
	m.setState(State{Phase: PhaseFailed, Reason: uerr.Error()})
	return uerr
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()

	log.Debugf("[update] State → %s", s.Phase)
	if m.observer != nil {
		m.observer(s)
	}
}
