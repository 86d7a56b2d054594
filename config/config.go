// Package config handles runtime configuration for embedding processes.
//
// The protocol rules of the registry (the pending capacity, zero-id
// reservation, swap-remove semantics) are constants of the core
// packages, not configuration; only operational settings live here.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime configuration.
type Config struct {
	// DataDir is where the backing database lives.
	DataDir string

	// FallbackURI is returned by the resolver when no active resource
	// satisfies a query.
	FallbackURI string

	// Logging
	Log LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // debug, info, warn, error
	JSON  bool   // JSON console output instead of colored text
	File  string // optional log file (always JSON)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:     DefaultDataDir(),
		FallbackURI: "",
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultDataDir returns the platform-specific default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".multiasset"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Multiasset")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Multiasset")
	default:
		return filepath.Join(home, ".multiasset")
	}
}
