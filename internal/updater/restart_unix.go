//go:build !windows

package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Restart replaces the current process image with the (updated) executable,
// keeping the original arguments.
func Restart() error {
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	binary, err = filepath.EvalSymlinks(binary)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	args := append([]string{binary}, os.Args[1:]...)
	return syscall.Exec(binary, args, os.Environ())
}
