// Package paths provides XDG-compliant path resolution for the taskbar.
//
// Resolution order:
// 1. NIRI_TASKBAR_HOME (portable root) → $NIRI_TASKBAR_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/niri-taskbar
// 3. Platform defaults → ~/.config/niri-taskbar, ~/.local/state/niri-taskbar
package paths

import (
	"os"
	"path/filepath"
)

const appDir = "niri-taskbar"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("NIRI_TASKBAR_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("NIRI_TASKBAR_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the taskbar configuration directory.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appDir)
}

// StateDir returns the taskbar state directory, used for logs and the
// daemon pidfile.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appDir)
}

// RuntimeDir returns the runtime directory for sockets and pipes.
// Uses XDG_RUNTIME_DIR when available, falls back to StateDir.
func RuntimeDir() string {
	if home := os.Getenv("NIRI_TASKBAR_HOME"); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	return StateDir()
}

// SocketPath returns the path of the daemon unix socket the rendering layer
// connects to.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "daemon.sock")
}

// PidFilePath returns the path of the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "daemon.pid")
}

// EnsureDirs creates all taskbar directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
