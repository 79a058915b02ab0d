package platform

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the per-user configuration directory of the application.
// It falls back to ~/.config and finally to the working directory.
func ConfigDir(appName string) string {
	if configDir, err := os.UserConfigDir(); err == nil && configDir != "" {
		return filepath.Join(configDir, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		return filepath.Join(homeDir, ".config", appName)
	}
	return filepath.Join(".", "."+appName)
}
