package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"kobobackup/internal/config"
)

// BackupBinary is the executable a watcher launches by default.
const BackupBinary = "kobo-backup"

// Launcher runs one complete backup and reports how it ended.
type Launcher interface {
	Launch(ctx context.Context) error
}

// CommandLauncher runs the backup binary as a child process.
type CommandLauncher struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// Launch runs the command and waits for it to exit.
func (l CommandLauncher) Launch(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, l.Path, l.Args...) //nolint:gosec
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(l.Path), err)
	}
	return nil
}

// ResolveBackupCommand returns watcher.backup_command when configured and
// otherwise the kobo-backup executable next to exe.
func ResolveBackupCommand(cfg *config.Config, exe string) (string, error) {
	if cfg.Watcher.BackupCommand != "" {
		return cfg.Watcher.BackupCommand, nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	name := BackupBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(exe), name)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("%s not found next to %s; set watcher.backup_command: %w", name, exe, err)
	}
	return candidate, nil
}
