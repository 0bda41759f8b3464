package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

// ErrAlreadyRunning reports that another watcher holds the instance lock.
var ErrAlreadyRunning = errors.New("another kobo-watch instance is already running")

// DefaultLockPath places the instance lock in the XDG runtime directory.
func DefaultLockPath() string {
	return filepath.Join(xdg.RuntimeDir, "kobo-watch.lock")
}

// InstanceLock keeps a single watcher per user session.
type InstanceLock struct {
	lock *flock.Flock
}

// AcquireInstanceLock takes the lock at path without blocking.
func AcquireInstanceLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire watcher lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &InstanceLock{lock: lock}, nil
}

// Release drops the lock.
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
