package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"kobobackup/internal/logging"
)

// MountSource reports directories created directly under the automount
// roots. The created directory's name is taken as the volume label, which is
// how udisks and macOS name mount points.
type MountSource struct {
	roots  []string
	logger *slog.Logger
}

// NewMountSource watches the given roots. Roots that do not exist when Run
// starts are skipped.
func NewMountSource(roots []string, logger *slog.Logger) *MountSource {
	return &MountSource{
		roots:  roots,
		logger: logging.NewComponentLogger(logger, "mount-source"),
	}
}

func (s *MountSource) Name() string { return "mounts" }

func (s *MountSource) Run(ctx context.Context, events chan<- Attach) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	watched := make(map[string]struct{}, len(s.roots))
	for _, root := range s.roots {
		if err := fsw.Add(root); err != nil {
			s.logger.Debug("not watching mount root",
				logging.String(logging.FieldPath, root),
				logging.Error(err),
			)
			continue
		}
		watched[filepath.Clean(root)] = struct{}{}
	}
	if len(watched) == 0 {
		return fmt.Errorf("%w: none of the mount roots %v exist", ErrSourceUnavailable, s.roots)
	}
	s.logger.Info("mount source started",
		logging.String(logging.FieldEventType, "mount_source_started"),
		logging.Strings("roots", s.roots),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := watched[filepath.Dir(event.Name)]; !ok {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || !info.IsDir() {
				continue
			}
			ev := Attach{Label: filepath.Base(event.Name), Source: s.Name(), Detail: event.Name}
			if !emit(ctx, events, ev) {
				return ctx.Err()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			s.logger.Warn("fsnotify error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "mount_source_error"),
				logging.String(logging.FieldErrorHint, "check inotify limits"),
				logging.String(logging.FieldImpact, "device attach may be missed"),
			)
		}
	}
}
