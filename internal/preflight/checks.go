package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"

	"kobobackup/internal/usage"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBaseDirectory passes when path is an accessible directory or when it
// is missing but its nearest existing ancestor is, since the backup creates
// it on first use.
func CheckBaseDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor, err := existingAncestor(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if res := CheckDirectoryAccess(name, ancestor); !res.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, ancestor)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckParentWritable verifies that the directory holding path can be written.
func CheckParentWritable(name, path string) Result {
	return CheckBaseDirectory(name, filepath.Dir(path))
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// required bytes free. A missing path is measured at its nearest existing
// ancestor.
func CheckFreeSpace(name, path string, required uint64) Result {
	target, err := existingAncestor(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	stat, err := disk.Usage(target)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: usage: %v)", target, err)}
	}
	free := formatUnsigned(stat.Free)
	need := formatUnsigned(required)
	if stat.Free < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, %s needed", free, need)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free, %s needed", free, need)}
}

// UsedBytes reports the bytes in use on the filesystem mounted at path.
func UsedBytes(path string) (uint64, error) {
	stat, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("filesystem usage for %s: %w", path, err)
	}
	return stat.Used, nil
}

func existingAncestor(path string) (string, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor for %s", path)
		}
		current = parent
	}
}

func formatUnsigned(v uint64) string {
	const maxInt64 = uint64(1<<63 - 1)
	if v > maxInt64 {
		v = maxInt64
	}
	return usage.FormatBytes(int64(v))
}
