package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"kobobackup/internal/device"
	"kobobackup/internal/logging"
	"kobobackup/internal/notifications"
)

const defaultPollInterval = time.Second

// Watcher turns attach events into backup runs.
type Watcher struct {
	label        string
	sources      []Source
	locator      device.Locator
	notifier     notifications.Service
	launcher     Launcher
	clock        clockwork.Clock
	mountWait    time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithClock replaces the clock used while waiting for the mount.
func WithClock(clock clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = clock }
}

// WithPollInterval sets how often the locator is polled while waiting.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithNotifier sets the desktop notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(w *Watcher) { w.notifier = svc }
}

// New builds a Watcher for label. mountWait bounds how long an attach event
// waits for the volume to be mounted.
func New(label string, sources []Source, locator device.Locator, launcher Launcher, mountWait time.Duration, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		label:        label,
		sources:      sources,
		locator:      locator,
		launcher:     launcher,
		clock:        clockwork.NewRealClock(),
		mountWait:    mountWait,
		pollInterval: defaultPollInterval,
		logger:       logging.NewComponentLogger(logger, "watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.notifier == nil {
		w.notifier = notifications.NewService(nil, nil)
	}
	return w
}

// Run consumes events from every source until ctx is cancelled or a source
// fails. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.sources) == 0 {
		return errors.New("watcher has no event sources")
	}
	g, gctx := errgroup.WithContext(ctx)
	events := make(chan Attach)
	for _, src := range w.sources {
		g.Go(func() error {
			return src.Run(gctx, events)
		})
	}
	g.Go(func() error {
		return w.loop(gctx, events)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (w *Watcher) loop(ctx context.Context, events <-chan Attach) error {
	w.logger.Info("watching for device",
		logging.String(logging.FieldLabel, w.label),
		logging.Int("sources", len(w.sources)),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if w.handle(ctx, ev) {
				w.drain(events)
			}
		}
	}
}

// handle launches one backup for ev when it is for our label and reports
// whether a backup process was started.
func (w *Watcher) handle(ctx context.Context, ev Attach) bool {
	if ev.Label != w.label {
		w.logger.Debug("ignoring attach for other volume",
			logging.String(logging.FieldLabel, ev.Label),
			logging.String("source", ev.Source),
		)
		return false
	}
	logger := w.logger.With(logging.String("source", ev.Source), logging.String("detail", ev.Detail))
	logger.Info("device attached", logging.String(logging.FieldEventType, "device_attached"))

	path, err := w.waitForMount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logging.WarnWithContext(logger, "device did not become available", "mount_wait_failed",
			logging.Error(err),
			logging.Duration("mount_wait", w.mountWait),
			logging.String(logging.FieldErrorHint, "mount the device manually and run kobo-backup"),
			logging.String(logging.FieldImpact, "no backup for this attach"),
		)
		return false
	}
	logger.Info("device mounted", logging.String(logging.FieldPath, path))

	if err := w.notifier.NotifyDeviceConnected(ctx, w.label); err != nil {
		logger.Debug("attach notification not delivered", logging.Error(err))
	}

	started := w.clock.Now()
	if err := w.launcher.Launch(ctx); err != nil {
		if ctx.Err() != nil {
			return true
		}
		logging.ErrorWithContext(logger, "backup run failed", "backup_run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run kobo-backup by hand to see its output"),
		)
		if nerr := w.notifier.NotifyBackupFailed(ctx, err); nerr != nil {
			logger.Debug("failure notification not delivered", logging.Error(nerr))
		}
		return true
	}
	logger.Info("backup run finished",
		logging.String(logging.FieldEventType, "backup_run_finished"),
		logging.Duration("elapsed", w.clock.Since(started)),
	)
	return true
}

// waitForMount polls the locator until the device resolves, a non-retryable
// error occurs, or mountWait elapses.
func (w *Watcher) waitForMount(ctx context.Context) (string, error) {
	deadline := w.clock.Now().Add(w.mountWait)
	for {
		path, err := device.Locate(ctx, w.locator, w.label)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, device.ErrNotFound) {
			return "", err
		}
		if !w.clock.Now().Before(deadline) {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-w.clock.After(w.pollInterval):
		}
	}
}

// drain drops events that queued up while a backup was running.
func (w *Watcher) drain(events <-chan Attach) {
	for {
		select {
		case ev := <-events:
			w.logger.Debug("dropping attach received during backup",
				logging.String(logging.FieldLabel, ev.Label),
				logging.String("source", ev.Source),
			)
		default:
			return
		}
	}
}
