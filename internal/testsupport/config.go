package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"kobobackup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose backup base directory lives in a unique
// temp directory. Desktop side effects are disabled so tests never pop
// notifications or file browsers.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Backup.BaseDir = filepath.Join(base, "Backups", "kobo")
	cfgVal.Notifications.Enabled = false
	cfgVal.Notifications.OpenFileBrowser = false
	cfgVal.Watcher.MountRoots = []string{filepath.Join(base, "media")}
	cfgVal.Watcher.MountWait = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLabel overrides the device label on the test config.
func WithLabel(label string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Device.Label = label
	}
}

// WithoutLock disables the advisory run lock.
func WithoutLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backup.Lock = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the desktop helpers used after a
// backup are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"notify-send", "xdg-open"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Backup.BaseDir))
}
