package copier

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"kobobackup/internal/fileutil"
	"kobobackup/internal/logging"
)

// CopyError is the fatal failure of a tree copy.
type CopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Skipped records a source entry left out because it could not be read.
type Skipped struct {
	Path string
	Err  error
}

// Result counts what a copy wrote.
type Result struct {
	Files    int64
	Dirs     int64
	Symlinks int64
	Bytes    int64
	Skipped  []Skipped
}

// Engine copies trees. The zero value logs nowhere.
type Engine struct {
	logger *slog.Logger
}

// New returns an Engine logging under the copy-engine component.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "copy-engine")}
}

// CopyTree copies source into destination, which must not exist yet.
func (e *Engine) CopyTree(source, destination string) (Result, error) {
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	var result Result

	info, err := os.Stat(source)
	if err != nil {
		return result, &CopyError{Source: source, Destination: destination, Err: err}
	}
	if !info.IsDir() {
		return result, &CopyError{Source: source, Destination: destination, Err: fmt.Errorf("source is not a directory")}
	}
	if err := os.Mkdir(destination, info.Mode().Perm()|0o700); err != nil {
		return result, &CopyError{Source: source, Destination: destination, Err: err}
	}

	if err := e.copyDir(source, destination, &result); err != nil {
		return result, err
	}
	if err := os.Chtimes(destination, info.ModTime(), info.ModTime()); err != nil {
		return result, &CopyError{Source: source, Destination: destination, Err: err}
	}
	return result, nil
}

// copyDir copies the children of src into the existing directory dst.
func (e *Engine) copyDir(src, dst string, result *Result) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		if tolerated(err) {
			e.skip(result, src, err)
			return nil
		}
		return &CopyError{Source: src, Destination: dst, Err: err}
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := entry.Info()
		if err != nil {
			if tolerated(err) {
				e.skip(result, srcPath, err)
				continue
			}
			return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
		}

		switch mode := info.Mode(); {
		case mode.IsDir():
			if err := os.Mkdir(dstPath, mode.Perm()|0o700); err != nil {
				return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
			}
			result.Dirs++
			if err := e.copyDir(srcPath, dstPath, result); err != nil {
				return err
			}
			// Directory mtimes change as children are written, so set them last.
			if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
				return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
			}
		case mode&fs.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				if tolerated(err) {
					e.skip(result, srcPath, err)
					continue
				}
				return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
			}
			result.Symlinks++
		case mode.IsRegular():
			if err := fileutil.CopyFilePreserve(srcPath, dstPath, info); err != nil {
				if sourceDenied(err) {
					e.skip(result, srcPath, err)
					continue
				}
				return &CopyError{Source: srcPath, Destination: dstPath, Err: err}
			}
			result.Files++
			result.Bytes += info.Size()
		default:
			e.logger.Debug("skipping special file",
				logging.String(logging.FieldPath, srcPath),
				logging.String("mode", mode.String()),
			)
		}
	}
	return nil
}

func (e *Engine) skip(result *Result, path string, err error) {
	result.Skipped = append(result.Skipped, Skipped{Path: path, Err: err})
	logging.WarnWithContext(e.logger, "skipped unreadable entry", "copy_entry_skipped",
		logging.String(logging.FieldPath, path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "entry is protected on the device; nothing to do unless it matters"),
		logging.String(logging.FieldImpact, "entry is missing from the backup"),
	)
}

// tolerated reports whether err is a permission failure (EACCES or EPERM).
// It is only consulted for operations that touch the source tree.
func tolerated(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// sourceDenied reports whether a file copy failed with a permission error
// while reading the source. Permission errors on the destination stay fatal.
func sourceDenied(err error) bool {
	var srcErr *fileutil.SourceError
	return errors.As(err, &srcErr) && tolerated(err)
}
