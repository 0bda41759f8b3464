package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDevice(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDevice() error {
	if c.Device.Label == "" {
		return errors.New("device.label must be set")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.BaseDir == "" {
		return errors.New("backup.base_dir must be set")
	}
	if strings.ContainsAny(c.Backup.NamePrefix, `/\`) {
		return fmt.Errorf("backup.name_prefix %q must not contain path separators", c.Backup.NamePrefix)
	}
	if c.Backup.MinFreeMarginMiB < 0 {
		return errors.New("backup.min_free_margin_mib must be zero or positive")
	}
	return nil
}

func (c *Config) validateWatcher() error {
	switch c.Watcher.Source {
	case SourceUdev, SourceMounts:
	default:
		return fmt.Errorf("watcher.source: unsupported value %q (use %q or %q)", c.Watcher.Source, SourceUdev, SourceMounts)
	}
	if c.Watcher.Source == SourceMounts && len(c.Watcher.MountRoots) == 0 {
		return errors.New("watcher.mount_roots must list at least one directory when watcher.source is \"mounts\"")
	}
	if c.Watcher.BackupCommand != "" && !filepath.IsAbs(c.Watcher.BackupCommand) {
		return fmt.Errorf("watcher.backup_command %q must be an absolute path", c.Watcher.BackupCommand)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
