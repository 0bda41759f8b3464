package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"kobobackup/internal/config"
	"kobobackup/internal/copier"
	"kobobackup/internal/device"
	"kobobackup/internal/logging"
	"kobobackup/internal/notifications"
	"kobobackup/internal/preflight"
	"kobobackup/internal/store"
	"kobobackup/internal/usage"
)

// Result describes a finished run.
type Result struct {
	Outcome     Outcome
	RunID       string
	Device      string
	BaseCreated bool
	Destination string
	Current     usage.Summary
	Previous    *usage.Summary
	Copy        copier.Result
	Started     time.Time
	Finished    time.Time
}

// Delta reports the change in files and bytes from the previous backup.
// ok is false when there was no previous backup.
func (r Result) Delta() (files, bytes int64, ok bool) {
	if r.Previous == nil {
		return 0, 0, false
	}
	return r.Current.Files - r.Previous.Files, r.Current.Bytes - r.Previous.Bytes, true
}

// Runner executes backup runs.
type Runner struct {
	cfg       *config.Config
	locator   device.Locator
	store     *store.Store
	engine    *copier.Engine
	notifier  notifications.Service
	clock     clockwork.Clock
	out       io.Writer
	logger    *slog.Logger
	freeCheck func(path string, required uint64) preflight.Result
	usedBytes func(path string) (uint64, error)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLocator replaces the platform device locator.
func WithLocator(locator device.Locator) Option {
	return func(r *Runner) { r.locator = locator }
}

// WithNotifier replaces the desktop notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) { r.notifier = svc }
}

// WithClock replaces the wall clock used to stamp destinations.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithOutput sets where user-facing progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// New builds a Runner from configuration. The device locator for the running
// platform is created unless WithLocator is given.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("backup runner requires configuration")
	}
	r := &Runner{
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		out:    os.Stdout,
		logger: logging.NewComponentLogger(logger, "backup"),
		freeCheck: func(path string, required uint64) preflight.Result {
			return preflight.CheckFreeSpace("Free space", path, required)
		},
		usedBytes: preflight.UsedBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.locator == nil {
		locator, err := device.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		r.locator = locator
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg, logger)
	}
	r.store = store.New(cfg, logger)
	r.engine = copier.New(logger)
	return r, nil
}

// Run performs one backup. See the package documentation for how outcomes
// and errors are split.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString(), Started: r.clock.Now()}
	logger := r.logger.With(logging.String(logging.FieldRunID, result.RunID))
	label := r.cfg.Device.Label

	path, err := device.Locate(ctx, r.locator, label)
	var ambiguous *device.AmbiguousError
	switch {
	case errors.Is(err, device.ErrNotFound):
		r.printf("No kobos detected.\n")
		logger.Info("no device detected", logging.String(logging.FieldLabel, label))
		result.Outcome = OutcomeNoDevice
		return r.finish(result), nil
	case errors.As(err, &ambiguous):
		return r.finish(result), err
	case err != nil:
		return r.finish(result), fmt.Errorf("locate %s: %w", label, err)
	}
	result.Device = path
	r.printf("Kobo mountpoint is: %s on %s\n", path, runtime.GOOS)
	logger.Info("device located",
		logging.String(logging.FieldLabel, label),
		logging.String(logging.FieldPath, path),
		logging.String("strategy", r.locator.Name()),
	)

	base := r.store.Base()
	created, err := r.store.EnsureBase()
	if err != nil {
		return r.finish(result), err
	}
	result.BaseCreated = created
	if created {
		r.printf("No backup folder detected. Creating %s\n", base)
	} else {
		r.printf("An existing kobo backup folder was detected at %s\n", base)
	}

	lock, err := r.store.Lock()
	if errors.Is(err, store.ErrLocked) {
		r.printf("A backup is already in progress in %s. Try again in a minute.\n", base)
		logger.Info("backup lock held by another run", logging.String(logging.FieldPath, base))
		result.Outcome = OutcomeInProgress
		return r.finish(result), nil
	}
	if err != nil {
		return r.finish(result), err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "failed to release backup lock", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run may report a backup in progress until this process exits"),
			)
		}
	}()

	previousPath, hasPrevious, err := r.store.MostRecent()
	if err != nil {
		return r.finish(result), err
	}

	now := r.clock.Now()
	dest, err := r.store.Allocate(now)
	if errors.Is(err, store.ErrAlreadyExists) {
		r.printf("A backup of the kobo was already completed at %s. Try again in a minute.\n", now.Format("2006-01-02 15:04"))
		logger.Info("backup already taken this minute", logging.String(logging.FieldPath, dest))
		result.Outcome = OutcomeAlreadyDone
		return r.finish(result), nil
	}
	if err != nil {
		return r.finish(result), err
	}
	result.Destination = dest

	r.checkFreeSpace(logger, path, base)

	r.printf("Backing up %s to %s\n", path, dest)
	logger.Info("copy started",
		logging.String("source", path),
		logging.String("destination", dest),
		logging.String(logging.FieldEventType, "copy_started"),
	)
	copyResult, err := r.engine.CopyTree(path, dest)
	result.Copy = copyResult
	if err != nil {
		logging.ErrorWithContext(logger, "copy failed", "copy_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "partial data is left in the destination; remove it before retrying"),
			logging.String("destination", dest),
		)
		return r.finish(result), err
	}
	if n := len(copyResult.Skipped); n > 0 {
		r.printf("Skipped %d protected entries on the device.\n", n)
	}

	result.Current = r.summarize(logger, dest, copyResult)
	if hasPrevious {
		previous := r.summarize(logger, previousPath, copier.Result{})
		result.Previous = &previous
	}
	r.report(result)
	logger.Info("backup complete",
		logging.String(logging.FieldEventType, "backup_completed"),
		logging.String("destination", dest),
		logging.Int64("files", result.Current.Files),
		logging.Int64("bytes", result.Current.Bytes),
		logging.Int("skipped", len(copyResult.Skipped)),
	)

	r.announce(ctx, logger, result.Current)
	result.Outcome = OutcomeCompleted
	return r.finish(result), nil
}

func (r *Runner) finish(result Result) Result {
	result.Finished = r.clock.Now()
	return result
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// checkFreeSpace warns when the base volume looks too small for the device.
func (r *Runner) checkFreeSpace(logger *slog.Logger, devicePath, base string) {
	used, err := r.usedBytes(devicePath)
	if err != nil {
		logger.Debug("device usage unavailable; skipping free-space check", logging.Error(err))
		return
	}
	check := r.freeCheck(base, used+r.cfg.MinFreeMargin())
	if check.Passed {
		logger.Debug("free space ok", logging.String("detail", check.Detail))
		return
	}
	r.printf("Warning: the backup folder may not have enough free space (%s).\n", check.Detail)
	logging.WarnWithContext(logger, "free space below device usage", "free_space_low",
		logging.String("detail", check.Detail),
		logging.String(logging.FieldErrorHint, "free space on the backup volume or change backup.base_dir"),
		logging.String(logging.FieldImpact, "copy may fail part way"),
	)
}

// summarize measures path, falling back to the copy counters when the walk
// fails.
func (r *Runner) summarize(logger *slog.Logger, path string, fallback copier.Result) usage.Summary {
	summary, err := usage.Summarize(path)
	if err == nil {
		return summary
	}
	logging.WarnWithContext(logger, "could not measure backup", "usage_failed",
		logging.String(logging.FieldPath, path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "summary uses copy counters instead"),
	)
	return usage.Summary{Path: path, Files: fallback.Files + fallback.Symlinks, Bytes: fallback.Bytes}
}

func (r *Runner) report(result Result) {
	current := result.Current
	r.printf("Backup complete. Copied %s files with a size of %s to %s.\n",
		usage.FormatCount(current.Files), current.Human(), current.Path)
	if result.Previous == nil {
		return
	}
	r.printf("The previous backup contained %s files and was %s.\n",
		usage.FormatCount(result.Previous.Files), result.Previous.Human())
	files, bytes, _ := result.Delta()
	r.printf("Change since the previous backup: %s files, %s.\n", signedCount(files), signedBytes(bytes))
}

// announce fires the desktop side effects. Failures are logged and dropped.
func (r *Runner) announce(ctx context.Context, logger *slog.Logger, summary usage.Summary) {
	if err := r.notifier.NotifyBackupCompleted(ctx, summary); err != nil {
		logger.Info("desktop notification not delivered", logging.Error(err))
	}
	if err := r.notifier.OpenFolder(ctx, summary.Path); err != nil {
		logger.Info("file browser not opened", logging.Error(err))
	}
}

func signedCount(n int64) string {
	if n < 0 {
		return "-" + usage.FormatCount(-n)
	}
	return "+" + usage.FormatCount(n)
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + usage.FormatBytes(-n)
	}
	return "+" + usage.FormatBytes(n)
}
