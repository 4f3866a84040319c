package updater

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// ParseVersion parses a version string like "1.2.3" or "v1.2.3-beta.1".
func ParseVersion(s string) (*version.Version, error) {
	v, err := version.NewSemver(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

// IsNewer reports whether candidate is strictly greater than current.
// An unparseable current version (e.g. "dev" builds) is treated as older
// than any release.
func IsNewer(current, candidate string) (bool, error) {
	latest, err := ParseVersion(candidate)
	if err != nil {
		return false, err
	}
	running, err := ParseVersion(current)
	if err != nil {
		return true, nil
	}
	return running.LessThan(latest), nil
}
