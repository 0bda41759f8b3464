package usage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary is the (file count, total bytes) pair describing a directory tree.
type Summary struct {
	Path  string
	Files int64
	Bytes int64
}

// Human renders the byte total with FormatBytes.
func (s Summary) Human() string {
	return FormatBytes(s.Bytes)
}

// Summarize computes both halves of a Summary for path.
func Summarize(path string) (Summary, error) {
	files, err := FileCount(path)
	if err != nil {
		return Summary{}, err
	}
	size, err := DirectorySize(path)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Path: path, Files: files, Bytes: size}, nil
}

// DirectorySize sums the sizes of regular files under path, descending into
// subdirectories. Symlinks are not followed and add nothing. A file path returns its own size. Subdirectories that cannot
// be read because of access restrictions contribute zero.
func DirectorySize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	return directorySize(path)
}

func directorySize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}
	var total int64
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			size, err := directorySize(child)
			if err != nil {
				return 0, err
			}
			total += size
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					continue
				}
				return 0, fmt.Errorf("stat %s: %w", child, err)
			}
			total += info.Size()
		}
	}
	return total, nil
}

// FileCount returns the number of regular files and symlinks anywhere in the
// tree rooted at path, the entries a copy writes besides directories. Special
// files are not counted. Unreadable subdirectories are skipped.
func FileCount(path string) (int64, error) {
	var count int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != path && errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if isCopiedEntry(d.Type()) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", path, err)
	}
	return count, nil
}

func isCopiedEntry(mode fs.FileMode) bool {
	return mode.IsRegular() || mode&fs.ModeSymlink != 0
}

var binaryPrefixes = []string{"", "K", "M", "G", "T", "P", "E", "Z"}

// FormatBytes renders a byte count with 1024-based prefixes and two decimals,
// e.g. "0.00B", "1.50KB", "1.00MB". Anything past the Z range stays in Y.
func FormatBytes(b int64) string {
	return formatScaled(float64(b))
}

func formatScaled(value float64) string {
	for _, unit := range binaryPrefixes {
		if value < 1024 {
			return fmt.Sprintf("%.2f%sB", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2fYB", value)
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators ("12,345").
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}
