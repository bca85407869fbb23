package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "factbook"

	// SummaryPlaceholder is used when no summary could be obtained.
	SummaryPlaceholder = "Summary coming soon."
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/factbook by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/factbook/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/factbook/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// UniverseFilePath returns the full path to the universe.yaml file
// with include/exclude overrides of the country universe.
// Returns ~/.config/factbook/universe.yaml by default.
func UniverseFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "universe.yaml")
}
