package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Device contains settings for locating the removable device.
type Device struct {
	Label        string `toml:"label"`
	LsblkBinary  string `toml:"lsblk_binary"`
	DfBinary     string `toml:"df_binary"`
	QueryTimeout int    `toml:"query_timeout"`
}

// Backup contains settings for the on-disk backup collection.
type Backup struct {
	BaseDir          string `toml:"base_dir"`
	NamePrefix       string `toml:"name_prefix"`
	MinFreeMarginMiB int    `toml:"min_free_margin_mib"`
	Lock             bool   `toml:"lock"`
}

// Notifications contains settings for the post-backup desktop side effects.
type Notifications struct {
	Enabled         bool `toml:"enabled"`
	OpenFileBrowser bool `toml:"open_file_browser"`
	Timeout         int  `toml:"timeout"`
}

// Watcher contains settings for the attach-event watcher.
type Watcher struct {
	Source        string   `toml:"source"`
	MountRoots    []string `toml:"mount_roots"`
	MountWait     int      `toml:"mount_wait"`
	BackupCommand string   `toml:"backup_command"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for kobo-backup.
//
// Configuration sections by subsystem:
//   - Device: volume label and the enumeration binaries used to find it
//   - Backup: base directory, naming, free-space margin and run locking
//   - Notifications: desktop notification and file browser toggles
//   - Watcher: attach-event source and the backup command it launches
//   - Logging: log format, level, and optional rotating file
type Config struct {
	Device        Device        `toml:"device"`
	Backup        Backup        `toml:"backup"`
	Notifications Notifications `toml:"notifications"`
	Watcher       Watcher       `toml:"watcher"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// QueryTimeout returns the device enumeration timeout.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Device.QueryTimeout) * time.Second
}

// NotificationTimeout returns the bound applied to each post-backup side effect.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.Timeout) * time.Second
}

// MountWait returns how long the watcher waits for an attached device to be mounted.
func (c *Config) MountWait() time.Duration {
	return time.Duration(c.Watcher.MountWait) * time.Second
}

// MinFreeMargin returns the free-space headroom required on top of the device usage.
func (c *Config) MinFreeMargin() uint64 {
	if c.Backup.MinFreeMarginMiB <= 0 {
		return 0
	}
	return uint64(c.Backup.MinFreeMarginMiB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(os.ExpandEnv(pathValue))
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
