// Package fileutil holds single-file helpers shared by the copy engine.
package fileutil

import (
	"fmt"
	"io"
	"os"
)

// SourceError marks a failure that happened while opening or reading the
// source side of a copy, as opposed to creating or writing the destination.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

type sourceReader struct {
	path string
	r    io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &SourceError{Path: s.path, Err: err}
	}
	return n, err
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
// dst must not already exist. Source-side failures are returned as
// *SourceError; a partially written dst is removed.
func CopyFileMode(src, dst string, mode os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return &SourceError{Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode.Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, sourceReader{path: src, r: in}); err != nil {
		return err
	}
	return out.Sync()
}

// CopyFilePreserve copies src to dst like CopyFileMode and then carries over
// the source modification time.
func CopyFilePreserve(src, dst string, info os.FileInfo) error {
	if err := CopyFileMode(src, dst, info.Mode()); err != nil {
		return err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve mtime on %s: %w", dst, err)
	}
	return nil
}
