package autostart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"kobobackup/internal/testsupport"
)

func writeWatcher(t *testing.T, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bin", WatcherBinary)
	testsupport.WriteFile(t, path, 16)
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	return path
}

func TestInstallWritesEntryAndMarksExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on windows")
	}
	watcher := writeWatcher(t, 0o644)
	dir := filepath.Join(t.TempDir(), "autostart")
	var opened []string
	inst := New(watcher, "/home/reader", nil,
		WithDir(dir),
		WithOpener(func(_ context.Context, path string) error {
			opened = append(opened, path)
			return errors.New("no file manager")
		}),
	)

	if err := inst.install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	for _, want := range []string{
		"Type=Application",
		"Name=Auto Kobo Backup",
		"Comment=Automatically backup your Kobo",
		"Path=/home/reader",
		"Exec=" + watcher,
		"StartupNotify=true",
		"X-GNOME-Autostart-enabled=true",
		"X-GNOME-Autostart-Delay=0",
	} {
		if !strings.Contains(string(data), want+"\n") {
			t.Fatalf("entry missing %q:\n%s", want, data)
		}
	}

	info, err := os.Stat(watcher)
	if err != nil {
		t.Fatalf("stat watcher: %v", err)
	}
	if info.Mode().Perm()&0o111 != 0o111 {
		t.Fatalf("watcher not executable: %v", info.Mode())
	}
	if len(opened) != 1 || opened[0] != dir {
		t.Fatalf("expected autostart dir to be opened once, got %v", opened)
	}

	installed, err := inst.Installed()
	if err != nil || !installed {
		t.Fatalf("Installed() = %v, %v", installed, err)
	}
}

func TestInstallRequiresWatcher(t *testing.T) {
	inst := New(filepath.Join(t.TempDir(), "missing"), "/", nil, WithDir(t.TempDir()))
	if err := inst.install(context.Background()); err == nil {
		t.Fatal("expected error for missing watcher")
	}
}

func TestUninstall(t *testing.T) {
	watcher := writeWatcher(t, 0o755)
	dir := t.TempDir()
	inst := New(watcher, "/", nil, WithDir(dir))

	if err := inst.uninstall(); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
	if err := inst.install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := inst.uninstall(); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if installed, _ := inst.Installed(); installed {
		t.Fatal("entry should be gone")
	}
}

func TestDefaultDirFollowsXDGConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	if got := DefaultDir(); got != filepath.Join(home, "autostart") {
		t.Fatalf("DefaultDir() = %s", got)
	}
}

func TestQuoteExec(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/kobo-watch":        "/usr/bin/kobo-watch",
		"/home/a b/kobo-watch":       `"/home/a b/kobo-watch"`,
		`/opt/"odd"/kobo-watch`:      `"/opt/\"odd\"/kobo-watch"`,
		"/home/$USER/bin/kobo-watch": `"/home/\$USER/bin/kobo-watch"`,
	}
	for in, want := range tests {
		if got := quoteExec(in); got != want {
			t.Fatalf("quoteExec(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveWatcher(t *testing.T) {
	dir := t.TempDir()
	name := WatcherBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe := filepath.Join(dir, "kobo-backup")
	testsupport.WriteFile(t, exe, 8)

	if _, err := ResolveWatcher(exe); err == nil {
		t.Fatal("expected error when the watcher is missing")
	}
	testsupport.WriteFile(t, filepath.Join(dir, name), 8)
	got, err := ResolveWatcher(exe)
	if err != nil {
		t.Fatalf("ResolveWatcher: %v", err)
	}
	if filepath.Base(got) != name {
		t.Fatalf("unexpected watcher path %s", got)
	}
}

func TestSupported(t *testing.T) {
	if !Supported("linux") || Supported("darwin") || Supported("windows") {
		t.Fatal("only linux supports autostart entries")
	}
}
