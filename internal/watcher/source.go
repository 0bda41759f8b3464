package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kobobackup/internal/config"
)

// ErrSourceUnavailable reports that an event source cannot run on this
// platform.
var ErrSourceUnavailable = errors.New("event source unavailable")

// Attach is a candidate arrival of a volume.
type Attach struct {
	// Label is the volume label the source observed.
	Label string
	// Source names the source that produced the event.
	Source string
	// Detail is source specific: a device node or a created path.
	Detail string
}

// Source delivers attach events until ctx is done.
type Source interface {
	Name() string
	Run(ctx context.Context, events chan<- Attach) error
}

// NewSource builds the source selected by cfg.Watcher.Source.
func NewSource(cfg *config.Config, logger *slog.Logger) (Source, error) {
	switch cfg.Watcher.Source {
	case config.SourceUdev:
		return newUdevSource(cfg.Device.Label, logger)
	case config.SourceMounts:
		return NewMountSource(cfg.Watcher.MountRoots, logger), nil
	default:
		return nil, fmt.Errorf("unknown watcher source %q", cfg.Watcher.Source)
	}
}

// emit hands ev to the consumer unless ctx ends first.
func emit(ctx context.Context, events chan<- Attach, ev Attach) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
