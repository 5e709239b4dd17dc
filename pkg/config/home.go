package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "APPIUM_PILOT_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the project root directory.
//
// Resolution order:
//  1. $APPIUM_PILOT_HOME environment variable
//  2. Nearest ancestor of the binary's directory containing a config/ dir
//  3. Nearest ancestor of the working directory containing a config/ dir
//  4. Current working directory (development fallback)
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		if root := findConfigRoot(filepath.Dir(execPath)); root != "" {
			return root
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root := findConfigRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// findConfigRoot walks up from dir until it finds a directory that
// contains a config/ subdirectory.
func findConfigRoot(dir string) string {
	for {
		if info, err := os.Stat(filepath.Join(dir, "config")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
