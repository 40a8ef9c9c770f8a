package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "HOFSTADTER_CONFIG"

	// AppName names the config, cache and data directories.
	AppName = "hofstadter"
)

// searchNames are the working-directory config files, in priority order.
var searchNames = []string{AppName + ".toml", AppName + ".yaml", AppName + ".yml"}

// FindConfigPath searches for a config file in priority order:
//  1. $HOFSTADTER_CONFIG
//  2. ./hofstadter.toml, ./hofstadter.yaml, ./hofstadter.yml
//  3. $XDG_CONFIG_HOME/hofstadter/config.{toml,yaml}
//  4. ~/.config/hofstadter/config.{toml,yaml}
//
// Returns the empty string if no config file is found.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	for _, name := range searchNames {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	for _, dir := range configDirs() {
		for _, name := range []string{"config.toml", "config.yaml"} {
			path := filepath.Join(dir, AppName, name)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// DefaultConfigPath returns the preferred location for a new config file.
func DefaultConfigPath() string {
	if dirs := configDirs(); len(dirs) > 0 {
		return filepath.Join(dirs[0], AppName, "config.toml")
	}
	return searchNames[0]
}

func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	return dirs
}

// CacheDir returns the file cache directory (~/.cache/hofstadter/ or
// $XDG_CACHE_HOME/hofstadter/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DataDir returns the data directory holding the local run catalog
// (~/.local/share/hofstadter/ or $XDG_DATA_HOME/hofstadter/).
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
