package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the local locations worklog reads and writes; everything else
// lives on the remote service.
type Paths struct {
	ConfigPath string // the TOML config file
	BaseDir    string // run-history database and other data
	LogDir     string // run log files
}

// DefaultPaths resolves the local paths, environment first:
//   - WORKLOG_CONFIG_PATH overrides ~/.config/worklog.toml
//   - WORKLOG_HOME overrides ~/.local/share/worklog
func DefaultPaths() (Paths, error) {
	configPath := os.Getenv("WORKLOG_CONFIG_PATH")
	baseDir := os.Getenv("WORKLOG_HOME")

	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "worklog.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "worklog")
		}
	}

	return Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
