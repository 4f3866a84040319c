package commands

import (
	"runtime"
	"sync"
)

// SystemInfo describes the executing environment.
type SystemInfo struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Family   string `json:"family"`
}

// currentSystem is computed once per process so every call observes the
// same triple.
var currentSystem = sync.OnceValue(func() SystemInfo {
	return systemInfoFor(runtime.GOOS, runtime.GOARCH)
})

// System returns the executing environment.
func System() SystemInfo {
	return currentSystem()
}

// systemInfoFor maps Go platform names onto the names the front-end expects.
func systemInfoFor(goos, goarch string) SystemInfo {
	platform := goos
	if goos == "darwin" {
		platform = "macos"
	}

	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "x86"
	case "ppc64le":
		arch = "powerpc64"
	}

	family := "unix"
	if goos == "windows" {
		family = "windows"
	} else if goos == "js" || goos == "wasip1" {
		family = "wasm"
	}

	return SystemInfo{Platform: platform, Arch: arch, Family: family}
}
