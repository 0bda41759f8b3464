//go:build !linux

package watcher

import (
	"fmt"
	"log/slog"
	"runtime"
)

func newUdevSource(string, *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("%w: udev on %s", ErrSourceUnavailable, runtime.GOOS)
}
