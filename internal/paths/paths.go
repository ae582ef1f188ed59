package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "deskgrid"

// ConfigDir returns the directory holding config.yaml and the board file.
// Priority:
// 1) $XDG_CONFIG_HOME/deskgrid (if set)
// 2) ~/.config/deskgrid
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// StateDir returns the directory used for logs. Priority:
// 1) $XDG_STATE_HOME/deskgrid (if set)
// 2) ~/.local/state/deskgrid
// 3) /tmp/deskgrid-state-<uid> when no home directory is available
// The directory is created.
func StateDir() (string, error) {
	var dir string
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		dir = filepath.Join(stateHome, appName)
	} else if homeDir, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(homeDir, ".local", "state", appName)
	} else {
		dir = fmt.Sprintf("/tmp/%s-state-%d", appName, os.Getuid())
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}
	return dir, nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// BoardPath returns the default board file path.
func BoardPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "board.yaml"), nil
}

// LogPath returns the TUI log file path.
func LogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}
