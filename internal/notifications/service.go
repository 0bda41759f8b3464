package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kobobackup/internal/config"
	"kobobackup/internal/logging"
	"kobobackup/internal/usage"
)

const appName = "kobo-backup"

// Service defines the desktop side effects exposed to the backup and watcher.
type Service interface {
	NotifyDeviceConnected(ctx context.Context, label string) error
	NotifyBackupCompleted(ctx context.Context, summary usage.Summary) error
	NotifyBackupFailed(ctx context.Context, err error) error
	OpenFolder(ctx context.Context, path string) error
	TestNotification(ctx context.Context) error
}

// NewService builds the desktop service. When both notifications and the
// file browser are disabled, a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if cfg == nil || (!cfg.Notifications.Enabled && !cfg.Notifications.OpenFileBrowser) {
		return noopService{}
	}
	logger = logging.NewComponentLogger(logger, "notifier")
	runner := commandExecutor{}
	return &desktopService{
		notifyEnabled: cfg.Notifications.Enabled,
		openEnabled:   cfg.Notifications.OpenFileBrowser,
		timeout:       cfg.NotificationTimeout(),
		notifier:      fallbackNotifier{dbusNotifier{}, execNotifier{runner: runner}},
		opener:        fallbackOpener{dbusOpener{}, execOpener{runner: runner}},
		logger:        logger,
	}
}

type message struct {
	summary string
	body    string
}

type desktopService struct {
	notifyEnabled bool
	openEnabled   bool
	timeout       time.Duration
	notifier      notifier
	opener        opener
	logger        *slog.Logger
}

func (d *desktopService) NotifyDeviceConnected(ctx context.Context, label string) error {
	return d.send(ctx, message{
		summary: fmt.Sprintf("%s connected", strings.TrimSpace(label)),
		body:    "Attempting backup...",
	})
}

func (d *desktopService) NotifyBackupCompleted(ctx context.Context, summary usage.Summary) error {
	return d.send(ctx, message{
		summary: "Backed up!",
		body:    fmt.Sprintf("Copied %s files (%s) to %s", usage.FormatCount(summary.Files), summary.Human(), summary.Path),
	})
}

func (d *desktopService) NotifyBackupFailed(ctx context.Context, err error) error {
	body := "unknown error"
	if err != nil {
		body = strings.TrimSpace(err.Error())
	}
	return d.send(ctx, message{summary: "Backup failed", body: body})
}

func (d *desktopService) TestNotification(ctx context.Context) error {
	return d.send(ctx, message{
		summary: "kobo-backup",
		body:    "Desktop notifications are working.",
	})
}

func (d *desktopService) OpenFolder(ctx context.Context, path string) error {
	if !d.openEnabled || strings.TrimSpace(path) == "" {
		return nil
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()
	if err := d.opener.open(ctx, path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	d.logger.Debug("opened folder", logging.String(logging.FieldPath, path))
	return nil
}

func (d *desktopService) send(ctx context.Context, msg message) error {
	if !d.notifyEnabled {
		return nil
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()
	if err := d.notifier.notify(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	d.logger.Debug("sent notification", logging.String("summary", msg.summary))
	return nil
}

func (d *desktopService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

type noopService struct{}

func (noopService) NotifyDeviceConnected(context.Context, string) error        { return nil }
func (noopService) NotifyBackupCompleted(context.Context, usage.Summary) error { return nil }
func (noopService) NotifyBackupFailed(context.Context, error) error            { return nil }
func (noopService) OpenFolder(context.Context, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
