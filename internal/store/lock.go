package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"kobobackup/internal/logging"
)

// LockFileName is created inside the base directory while a backup runs.
const LockFileName = ".kobo-backup.lock"

// ErrLocked reports that another run holds the backup lock.
var ErrLocked = errors.New("another backup is already in progress")

// RunLock is held for the duration of a copy. The zero value is a no-op.
type RunLock struct {
	lock *flock.Flock
}

// Lock takes the advisory run lock in the base directory without blocking.
// When locking is disabled in configuration it returns a no-op lock. The base
// directory must exist.
func (s *Store) Lock() (*RunLock, error) {
	if !s.lock {
		return &RunLock{}, nil
	}
	path := filepath.Join(s.base, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire backup lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	s.logger.Debug("acquired backup lock", logging.String(logging.FieldPath, path))
	return &RunLock{lock: lock}, nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
