// Package config provides configuration management for cmdlearn.
package config

import (
	"os"
	"path/filepath"
)

// Paths holds the directory layout for cmdlearn state.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/cmdlearn)
	ConfigDir string

	// DataDir is the directory for persisted model documents
	// (~/.local/share/cmdlearn)
	DataDir string

	// CacheDir is the directory for disposable files (~/.cache/cmdlearn)
	CacheDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory spec.
func DefaultPaths() *Paths {
	home := homeDir()

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "cmdlearn"),
		DataDir:   filepath.Join(dataHome, "cmdlearn"),
		CacheDir:  filepath.Join(cacheHome, "cmdlearn"),
	}
}

// ConfigFile returns the path to the config file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EventsDB returns the path to the sqlite command-event archive.
func (p *Paths) EventsDB() string {
	return filepath.Join(p.DataDir, "events.db")
}

// homeDir returns the user's home directory, falling back to the HOME
// environment variable.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
