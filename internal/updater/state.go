package updater

// Phase is the tag of the update State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseAvailable
	PhaseDownloading
	PhaseReadyToInstall
	PhaseInstalling
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseAvailable:
		return "available"
	case PhaseDownloading:
		return "downloading"
	case PhaseReadyToInstall:
		return "ready_to_install"
	case PhaseInstalling:
		return "installing"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the update lifecycle state. Manifest is set from Available
// onwards, Percent while Downloading, Reason when Failed.
type State struct {
	Phase    Phase
	Manifest *Manifest
	Percent  int
	Reason   string
}

// Busy reports whether a flow is running in this state.
func (s State) Busy() bool {
	switch s.Phase {
	case PhaseChecking, PhaseDownloading, PhaseReadyToInstall, PhaseInstalling:
		return true
	}
	return false
}

// Progress is one download progress report. Values never decrease within
// a download.
type Progress struct {
	Version    string
	Downloaded int64
	Total      int64
	Percent    int
}

func percentOf(downloaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(downloaded * 100 / total)
	if p > 100 {
		p = 100
	}
	return p
}

// Payload returns the UI representation of the state.
func (s State) Payload() map[string]any {
	p := map[string]any{
		"phase": s.Phase.String(),
	}
	if s.Manifest != nil {
		p["version"] = s.Manifest.Version
		p["size"] = s.Manifest.Size
		if s.Manifest.ReleaseURL != "" {
			p["release_url"] = s.Manifest.ReleaseURL
		}
	}
	if s.Phase == PhaseDownloading {
		p["percent"] = s.Percent
	}
	if s.Reason != "" {
		p["reason"] = s.Reason
	}
	return p
}

// Payload returns the UI representation of the progress report.
func (p Progress) Payload() map[string]any {
	return map[string]any{
		"version":    p.Version,
		"downloaded": p.Downloaded,
		"total":      p.Total,
		"percent":    p.Percent,
	}
}
