package config

import "runtime"

const (
	defaultConfigPath       = "~/.config/kobo-backup/config.toml"
	projectConfigName       = "kobo-backup.toml"
	defaultLabel            = "KOBOeReader"
	defaultLsblkBinary      = "lsblk"
	defaultDfBinary         = "df"
	defaultQueryTimeout     = 10
	defaultBaseDir          = "~/Backups/kobo"
	defaultNamePrefix       = "kobo_backup_"
	defaultMinFreeMarginMiB = 64
	defaultNotifyTimeout    = 5
	defaultWatcherSource    = SourceUdev
	defaultMountWait        = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogMaxSizeMB     = 10
	defaultLogMaxBackups    = 3
	defaultLogMaxAgeDays    = 30
	defaultWatcherLogFile   = "~/.local/share/kobo-backup/kobo-watch.log"
	envLabelOverride        = "KOBO_BACKUP_LABEL"
	envBaseDirOverride      = "KOBO_BACKUP_DIR"
)

// Watcher event sources.
const (
	SourceUdev   = "udev"
	SourceMounts = "mounts"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Device: Device{
			Label:        defaultLabel,
			LsblkBinary:  defaultLsblkBinary,
			DfBinary:     defaultDfBinary,
			QueryTimeout: defaultQueryTimeout,
		},
		Backup: Backup{
			BaseDir:          defaultBaseDir,
			NamePrefix:       defaultNamePrefix,
			MinFreeMarginMiB: defaultMinFreeMarginMiB,
			Lock:             true,
		},
		Notifications: Notifications{
			Enabled:         true,
			OpenFileBrowser: true,
			Timeout:         defaultNotifyTimeout,
		},
		Watcher: Watcher{
			Source:     defaultWatcherSource,
			MountRoots: defaultMountRoots(),
			MountWait:  defaultMountWait,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

// DefaultWatcherLogFile is the log file the watcher uses when none is configured.
func DefaultWatcherLogFile() string {
	path, err := expandPath(defaultWatcherLogFile)
	if err != nil {
		return ""
	}
	return path
}

func defaultMountRoots() []string {
	if runtime.GOOS == "darwin" {
		return []string{"/Volumes"}
	}
	return []string{"/media/$USER", "/run/media/$USER"}
}
