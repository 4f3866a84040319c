package updater

import "context"

// Manifest describes an update published by the remote source.
type Manifest struct {
	Version    string
	Size       int64
	URL        string
	Name       string
	ReleaseURL string
	// SHA256 is the hex digest of the artifact, empty when not published.
	SHA256 string
}

// Artifact is a downloaded update ready for installation.
type Artifact struct {
	Manifest Manifest
	Path     string
}

// ProgressFunc receives cumulative downloaded bytes and the expected total
// (0 when unknown).
type ProgressFunc func(downloaded, total int64)

// Source is the remote update capability: where updates are found, how
// they are fetched and how they are applied.
type Source interface {
	// Check returns the latest published manifest, or nil when nothing is
	// published.
	Check(ctx context.Context) (*Manifest, error)
	Download(ctx context.Context, m Manifest, onProgress ProgressFunc) (Artifact, error)
	Install(ctx context.Context, a Artifact) error
}
