package watcher

import (
	"errors"
	"log/slog"
	"os"

	"kobobackup/internal/config"
	"kobobackup/internal/device"
	"kobobackup/internal/logging"
	"kobobackup/internal/notifications"
)

// NewFromConfig wires a Watcher the way kobo-watch runs it: the configured
// event source, the platform locator, desktop notifications, and the backup
// binary resolved relative to exe. A non-empty configPath is forwarded to
// the backup process with --config.
func NewFromConfig(cfg *config.Config, configPath, exe string, logger *slog.Logger) (*Watcher, error) {
	src, err := NewSource(cfg, logger)
	if errors.Is(err, ErrSourceUnavailable) && cfg.Watcher.Source == config.SourceUdev {
		logging.WarnWithContext(logger, "udev unavailable; watching mount roots instead", "watcher_source_fallback",
			logging.Error(err),
			logging.Strings("roots", cfg.Watcher.MountRoots),
			logging.String(logging.FieldImpact, "only devices mounted under the mount roots are noticed"),
		)
		src, err = NewMountSource(cfg.Watcher.MountRoots, logger), nil
	}
	if err != nil {
		return nil, err
	}

	locator, err := device.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	command, err := ResolveBackupCommand(cfg, exe)
	if err != nil {
		return nil, err
	}
	var args []string
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	launcher := CommandLauncher{Path: command, Args: args, Stdout: os.Stdout, Stderr: os.Stderr}

	return New(cfg.Device.Label, []Source{src}, locator, launcher, cfg.MountWait(), logger,
		WithNotifier(notifications.NewService(cfg, logger)),
	), nil
}
