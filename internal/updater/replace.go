package updater

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// ReplaceBinary moves artifact over target. The previous binary is parked at
// target.bak for the duration of the swap and put back if the swap fails, in
// which case artifact is removed as well.
func ReplaceBinary(target, artifact string) error {
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}
	backup := resolved + ".bak"

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale backup %s: %w", backup, err)
	}
	if err := os.Rename(resolved, backup); err != nil {
		discard(Artifact{Path: artifact})
		return fmt.Errorf("park %s: %w", resolved, err)
	}

	if err := os.Rename(artifact, resolved); err != nil {
		if rerr := os.Rename(backup, resolved); rerr != nil {
			return fmt.Errorf("move update into %s: %w (restoring backup: %v)", resolved, err, rerr)
		}
		discard(Artifact{Path: artifact})
		return fmt.Errorf("move update into %s: %w", resolved, err)
	}

	// Windows keeps the running image locked; the next update clears it.
	if err := os.Remove(backup); err != nil {
		log.Debugf("[update] Backup %s left in place: %v", backup, err)
	}
	return nil
}
