//go:build windows

package config

import "os"

// processAlive relies on FindProcess opening a handle, which fails for exited processes.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = process.Release()
	return true
}
