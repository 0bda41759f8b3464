package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kobobackup/internal/config"
)

func TestApplyWatcherDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := config.Default()
	applyWatcherDefaults(&cfg)
	if cfg.Logging.File == "" || filepath.Base(cfg.Logging.File) != "kobo-watch.log" {
		t.Fatalf("expected default watcher log file, got %q", cfg.Logging.File)
	}

	cfg.Logging.File = "/var/log/kobo.log"
	applyWatcherDefaults(&cfg)
	if cfg.Logging.File != "/var/log/kobo.log" {
		t.Fatalf("configured log file overwritten: %q", cfg.Logging.File)
	}

	applyWatcherDefaults(nil)
}

func TestChildConfigPath(t *testing.T) {
	if got := childConfigPath("/home/r/.config/kobo-backup/config.toml", false); got != "" {
		t.Fatalf("missing config should not be forwarded, got %q", got)
	}
	if got := childConfigPath("/etc/kobo.toml", true); got != "/etc/kobo.toml" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kobo.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", path})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}
