package main

import (
	"os"
	"path/filepath"
)

// defaults resolves the config path and data directory the CLI falls
// back to when neither is given on the command line. PHOTOMIRROR_CONFIG
// and PHOTOMIRROR_HOME let a user or test harness override either
// independently of the other, mirroring the env-var precedence the
// teacher's defaults resolver uses before falling back to XDG paths.
type defaults struct {
	ConfigPath string
	DataDir    string
}

func resolveDefaults() (defaults, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaults{}, err
	}

	configPath := os.Getenv("PHOTOMIRROR_CONFIG")
	if configPath == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			configDir = filepath.Join(home, ".config")
		}
		configPath = filepath.Join(configDir, "photomirror", "config.toml")
	}

	dataDir := os.Getenv("PHOTOMIRROR_HOME")
	if dataDir == "" {
		shareDir := os.Getenv("XDG_DATA_HOME")
		if shareDir == "" {
			shareDir = filepath.Join(home, ".local", "share")
		}
		dataDir = filepath.Join(shareDir, "photomirror")
	}

	return defaults{ConfigPath: configPath, DataDir: dataDir}, nil
}
