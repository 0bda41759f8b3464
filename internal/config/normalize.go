package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvOverrides()
	c.normalizeDevice()
	if err := c.normalizeBackup(); err != nil {
		return err
	}
	c.normalizeNotifications()
	if err := c.normalizeWatcher(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) applyEnvOverrides() {
	if value, ok := os.LookupEnv(envLabelOverride); ok && strings.TrimSpace(value) != "" {
		c.Device.Label = value
	}
	if value, ok := os.LookupEnv(envBaseDirOverride); ok && strings.TrimSpace(value) != "" {
		c.Backup.BaseDir = value
	}
}

func (c *Config) normalizeDevice() {
	// Labels are matched exactly; only surrounding whitespace is dropped.
	c.Device.Label = strings.TrimSpace(c.Device.Label)
	c.Device.LsblkBinary = strings.TrimSpace(c.Device.LsblkBinary)
	if c.Device.LsblkBinary == "" {
		c.Device.LsblkBinary = defaultLsblkBinary
	}
	c.Device.DfBinary = strings.TrimSpace(c.Device.DfBinary)
	if c.Device.DfBinary == "" {
		c.Device.DfBinary = defaultDfBinary
	}
	if c.Device.QueryTimeout <= 0 {
		c.Device.QueryTimeout = defaultQueryTimeout
	}
}

func (c *Config) normalizeBackup() error {
	if strings.TrimSpace(c.Backup.BaseDir) == "" {
		c.Backup.BaseDir = defaultBaseDir
	}
	var err error
	if c.Backup.BaseDir, err = expandPath(strings.TrimSpace(c.Backup.BaseDir)); err != nil {
		return fmt.Errorf("backup.base_dir: %w", err)
	}
	c.Backup.NamePrefix = strings.TrimSpace(c.Backup.NamePrefix)
	if c.Backup.NamePrefix == "" {
		c.Backup.NamePrefix = defaultNamePrefix
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.Timeout <= 0 {
		c.Notifications.Timeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeWatcher() error {
	c.Watcher.Source = strings.ToLower(strings.TrimSpace(c.Watcher.Source))
	if c.Watcher.Source == "" {
		c.Watcher.Source = defaultWatcherSource
	}
	if len(c.Watcher.MountRoots) == 0 {
		c.Watcher.MountRoots = defaultMountRoots()
	}
	roots := make([]string, 0, len(c.Watcher.MountRoots))
	for i, root := range c.Watcher.MountRoots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("watcher.mount_roots[%d]: %w", i, err)
		}
		roots = append(roots, expanded)
	}
	c.Watcher.MountRoots = roots
	if c.Watcher.MountWait <= 0 {
		c.Watcher.MountWait = defaultMountWait
	}
	c.Watcher.BackupCommand = strings.TrimSpace(c.Watcher.BackupCommand)
	if c.Watcher.BackupCommand != "" {
		expanded, err := expandPath(c.Watcher.BackupCommand)
		if err != nil {
			return fmt.Errorf("watcher.backup_command: %w", err)
		}
		c.Watcher.BackupCommand = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
	return nil
}
