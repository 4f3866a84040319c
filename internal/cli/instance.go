package cli

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/wraith-app/wraith/internal/config"
)

// ensureInstance makes sure the shell is running, starting it if necessary.
func ensureInstance() error {
	running, _, err := config.IsInstanceRunning()
	if err != nil {
		return fmt.Errorf("failed to check instance status: %w", err)
	}

	if running {
		return nil
	}

	// Start the shell in background
	return startInstance()
}

// startInstance starts `wraith run` in the background and waits until it
// has written instance.yaml.
func startInstance() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find wraith binary: %w", err)
	}

	cmd := exec.Command(self, "run")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start wraith: %w", err)
	}
	_ = cmd.Process.Release()

	// Wait for the shell to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsInstanceRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("wraith failed to start within timeout")
}
