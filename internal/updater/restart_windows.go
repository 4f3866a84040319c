//go:build windows

package updater

import (
	"fmt"
	"os"
	"os/exec"
)

// Restart launches the (updated) executable with the original arguments and
// exits the current process.
func Restart() error {
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(binary, os.Args[1:]...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start updated binary: %w", err)
	}

	os.Exit(0)
	return nil
}
