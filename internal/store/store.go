package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kobobackup/internal/config"
	"kobobackup/internal/logging"
)

// nameLayout stamps backup directories at minute granularity.
const nameLayout = "2006-01-02_15-04"

// ErrAlreadyExists reports that the destination for the current minute is
// already taken by an earlier run.
var ErrAlreadyExists = errors.New("backup destination already exists")

// Store owns the backup base directory.
type Store struct {
	base   string
	prefix string
	lock   bool
	logger *slog.Logger
}

// Entry describes one existing backup directory.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	// Stamp is the time encoded in Name; zero when Name does not follow the
	// backup naming scheme.
	Stamp time.Time
}

// New builds a Store rooted at the configured base directory.
func New(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		base:   cfg.Backup.BaseDir,
		prefix: cfg.Backup.NamePrefix,
		lock:   cfg.Backup.Lock,
		logger: logging.NewComponentLogger(logger, "backup-store"),
	}
}

// Base returns the base directory path.
func (s *Store) Base() string { return s.base }

// EnsureBase creates the base directory if needed. created is true only when
// this call made it.
func (s *Store) EnsureBase() (created bool, err error) {
	info, err := os.Stat(s.base)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("backup base %s is not a directory", s.base)
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("inspect backup base: %w", err)
	}

	if err := os.MkdirAll(s.base, 0o755); err != nil {
		return false, fmt.Errorf("create backup base: %w", err)
	}
	s.logger.Info("created backup base directory", logging.String(logging.FieldPath, s.base))
	return true, nil
}

// MostRecent returns the immediate subdirectory of the base with the greatest
// modification time. ok is false when there is none.
func (s *Store) MostRecent() (path string, ok bool, err error) {
	entries, err := s.List()
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Path, true, nil
}

// List returns the immediate subdirectories of the base, newest first.
// A missing base yields an empty list.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list backup base: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping unreadable backup entry", "backup_entry_skipped",
				logging.String(logging.FieldPath, filepath.Join(s.base, dirEntry.Name())),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the backup directory"),
				logging.String(logging.FieldImpact, "entry is ignored when picking the previous backup"),
			)
			continue
		}
		stamp, _ := ParseName(s.prefix, dirEntry.Name())
		entries = append(entries, Entry{
			Name:    dirEntry.Name(),
			Path:    filepath.Join(s.base, dirEntry.Name()),
			ModTime: info.ModTime(),
			Stamp:   stamp,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Allocate returns the destination path for a backup taken at now. It does
// not create the directory. A path that already exists yields
// ErrAlreadyExists.
func (s *Store) Allocate(now time.Time) (string, error) {
	dest := filepath.Join(s.base, DestinationName(s.prefix, now))
	_, err := os.Lstat(dest)
	switch {
	case err == nil:
		return dest, fmt.Errorf("%w: %s", ErrAlreadyExists, dest)
	case errors.Is(err, fs.ErrNotExist):
		return dest, nil
	default:
		return "", fmt.Errorf("inspect destination: %w", err)
	}
}

// DestinationName formats the directory name for a backup taken at now.
func DestinationName(prefix string, now time.Time) string {
	return prefix + now.Format(nameLayout)
}

// ParseName recovers the local time stamped into a backup directory name.
func ParseName(prefix, name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return time.Time{}, false
	}
	stamp, err := time.ParseInLocation(nameLayout, rest, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}
