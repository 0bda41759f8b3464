package autostart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"

	"kobobackup/internal/logging"
)

// FileName is the desktop entry written to the autostart directory.
const FileName = "auto_kobo_backup.desktop"

// WatcherBinary is the executable the entry launches.
const WatcherBinary = "kobo-watch"

var (
	// ErrNotInstalled reports that there is no entry to remove.
	ErrNotInstalled = errors.New("auto backup is not set up")
	// ErrUnsupportedPlatform reports that autostart entries are Linux only.
	ErrUnsupportedPlatform = errors.New("the automation feature is currently only supported on Linux")
)

// Supported reports whether goos honours XDG autostart entries.
func Supported(goos string) bool {
	return goos == "linux"
}

// DefaultDir returns $XDG_CONFIG_HOME/autostart.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, "autostart")
}

// Opener shows a directory in the desktop file browser.
type Opener func(ctx context.Context, path string) error

// Installer writes and removes the autostart entry.
type Installer struct {
	dir     string
	watcher string
	workDir string
	open    Opener
	logger  *slog.Logger
}

// Option customizes an Installer.
type Option func(*Installer)

// WithDir overrides the autostart directory.
func WithDir(dir string) Option {
	return func(i *Installer) { i.dir = dir }
}

// WithOpener sets how the autostart directory is shown after install.
func WithOpener(open Opener) Option {
	return func(i *Installer) { i.open = open }
}

// New returns an Installer for the watcher executable at watcherPath.
// workDir becomes the entry's Path key.
func New(watcherPath, workDir string, logger *slog.Logger, opts ...Option) *Installer {
	i := &Installer{
		dir:     DefaultDir(),
		watcher: watcherPath,
		workDir: workDir,
		logger:  logging.NewComponentLogger(logger, "autostart"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Path returns the location of the desktop entry.
func (i *Installer) Path() string {
	return filepath.Join(i.dir, FileName)
}

// Installed reports whether the desktop entry exists.
func (i *Installer) Installed() (bool, error) {
	_, err := os.Stat(i.Path())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("inspect autostart entry: %w", err)
	}
}

// Install writes the desktop entry, marks the watcher executable, and then
// tries to show the autostart directory. Showing the directory is a
// convenience and its failure is only logged.
func (i *Installer) Install(ctx context.Context) error {
	if !Supported(runtime.GOOS) {
		return ErrUnsupportedPlatform
	}
	return i.install(ctx)
}

func (i *Installer) install(ctx context.Context) error {
	info, err := os.Stat(i.watcher)
	if err != nil {
		return fmt.Errorf("watcher executable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("watcher executable %s is a directory", i.watcher)
	}

	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("create autostart directory: %w", err)
	}
	if err := os.WriteFile(i.Path(), []byte(DesktopEntry(i.watcher, i.workDir)), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o111 != 0o111 {
		if err := os.Chmod(i.watcher, mode|0o111); err != nil {
			return fmt.Errorf("mark watcher executable: %w", err)
		}
	}
	i.logger.Info("installed autostart entry",
		logging.String(logging.FieldPath, i.Path()),
		logging.String("watcher", i.watcher),
	)

	if i.open != nil {
		if err := i.open(ctx, i.dir); err != nil {
			i.logger.Debug("could not show autostart directory", logging.Error(err))
		}
	}
	return nil
}

// Uninstall removes the desktop entry. A missing entry yields ErrNotInstalled.
func (i *Installer) Uninstall() error {
	if !Supported(runtime.GOOS) {
		return ErrUnsupportedPlatform
	}
	return i.uninstall()
}

func (i *Installer) uninstall() error {
	err := os.Remove(i.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotInstalled
	}
	if err != nil {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	i.logger.Info("removed autostart entry", logging.String(logging.FieldPath, i.Path()))
	return nil
}

// DesktopEntry renders the autostart file for watcherPath.
func DesktopEntry(watcherPath, workDir string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=Auto Kobo Backup\n")
	b.WriteString("Comment=Automatically backup your Kobo\n")
	fmt.Fprintf(&b, "Path=%s\n", workDir)
	fmt.Fprintf(&b, "Exec=%s\n", quoteExec(watcherPath))
	b.WriteString("StartupNotify=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	b.WriteString("X-GNOME-Autostart-Delay=0\n")
	return b.String()
}

// quoteExec quotes an Exec argument that contains reserved characters.
func quoteExec(arg string) string {
	if !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(arg) + `"`
}

// ResolveWatcher returns the kobo-watch executable that sits next to exe.
func ResolveWatcher(exe string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	name := WatcherBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(exe), name)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("%s not found next to %s: %w", name, exe, err)
	}
	return candidate, nil
}
