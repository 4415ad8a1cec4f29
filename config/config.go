// Package config locates and loads winsize configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the config and state directories.
const AppName = "winsize"

// Dir returns the winsize configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName)
}

// StateDir returns the directory for logs.
// Respects XDG_STATE_HOME on Unix, LOCALAPPDATA on Windows.
func StateDir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = Dir()
		}
	} else {
		base = os.Getenv("XDG_STATE_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".local", "state")
		}
	}

	return filepath.Join(base, AppName)
}

// InitFile returns the path to init.lua
func InitFile() string {
	return filepath.Join(Dir(), "init.lua")
}

// File returns the path to config.yaml
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}
