package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"kobobackup/internal/autostart"
	"kobobackup/internal/backup"
	"kobobackup/internal/testsupport"
)

type fixedLocator struct {
	paths []string
}

func (f fixedLocator) Name() string { return "fixed" }

func (f fixedLocator) Candidates(context.Context, string) ([]string, error) {
	return f.paths, nil
}

type cliTestEnv struct {
	baseDir    string
	backupDir  string
	configPath string
	devicePath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("KOBO_BACKUP_LABEL", "")
	t.Setenv("KOBO_BACKUP_DIR", "")

	env := &cliTestEnv{
		baseDir:    base,
		backupDir:  filepath.Join(base, "Backups", "kobo"),
		configPath: filepath.Join(base, "config.toml"),
		devicePath: filepath.Join(base, "media", "KOBOeReader"),
	}
	content := fmt.Sprintf(`[backup]
base_dir = '%s'

[notifications]
enabled = false
open_file_browser = false

[logging]
level = "error"
`, env.backupDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	testsupport.WriteTree(t, env.devicePath, map[string]int64{
		".kobo/KoboReader.sqlite": 300,
		"books/one.epub":          120,
	})
	return env
}

func (e *cliTestEnv) context(goos string, devices ...string) *commandContext {
	cc := newCommandContext(new(string))
	cc.goos = goos
	cc.autostartDir = filepath.Join(e.baseDir, "autostart")
	locator := fixedLocator{paths: devices}
	cc.backupOptions = []backup.Option{backup.WithLocator(locator)}
	cc.deviceLocator = locator
	return cc
}

func runCLI(t *testing.T, cc *commandContext, args ...string) (string, error) {
	t.Helper()
	cmd := buildRootCommand(cc)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommandRunsBackup(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.context(runtime.GOOS, env.devicePath), "--config", env.configPath)
	if err != nil {
		t.Fatalf("backup run: %v", err)
	}
	for _, want := range []string{
		"Kobo mountpoint is: " + env.devicePath,
		"No backup folder detected. Creating " + env.backupDir,
		"Backup complete. Copied 2 files with a size of 420.00B",
		"Destination",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	entries, err := os.ReadDir(env.backupDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	var backups int
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "kobo_backup_") {
			backups++
		}
	}
	if backups != 1 {
		t.Fatalf("expected one backup directory, found %d", backups)
	}
}

func TestRootCommandWithoutDevice(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.context(runtime.GOOS), "--config", env.configPath)
	if err != nil {
		t.Fatalf("no device should not be an error: %v", err)
	}
	if strings.TrimSpace(out) != "No kobos detected." {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRootCommandAmbiguousDeviceFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env.context(runtime.GOOS, "/media/a", "/media/b"), "--config", env.configPath)
	if err == nil {
		t.Fatal("expected error for two devices")
	}
	if !strings.Contains(err.Error(), "/media/a") || !strings.Contains(err.Error(), "/media/b") {
		t.Fatalf("error should list candidates: %v", err)
	}
}

func TestRootCommandRejectsArguments(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env.context(runtime.GOOS), "--config", env.configPath, "bogus"); err == nil {
		t.Fatal("expected error for unknown argument")
	}
}

func TestRunExitCodes(t *testing.T) {
	setupCLITestEnv(t)

	var stderr bytes.Buffer
	if code := run([]string{"--no-such-flag"}, &stderr); code != 1 {
		t.Fatalf("expected exit code 1 for unknown flag, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown flag") {
		t.Fatalf("expected flag error on stderr, got %q", stderr.String())
	}

	stderr.Reset()
	if code := run([]string{"--help"}, &stderr); code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d (%q)", code, stderr.String())
	}
}

func TestRootCommandReportsConfigErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[watcher]\nsource = \"carrier\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := runCLI(t, env.context(runtime.GOOS, env.devicePath), "--config", env.configPath)
	if err == nil || !strings.Contains(err.Error(), "watcher.source") {
		t.Fatalf("expected watcher.source validation error, got %v", err)
	}
}

func TestAutomationFlagsOutsideLinux(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, flag := range []string{"--setup_auto_backup", "--cancel_auto_backup"} {
		t.Run(flag, func(t *testing.T) {
			out, err := runCLI(t, env.context("darwin"), "--config", env.configPath, flag)
			if err != nil {
				t.Fatalf("%s: %v", flag, err)
			}
			if strings.TrimSpace(out) != unsupportedAutomationMessage {
				t.Fatalf("unexpected output: %q", out)
			}
		})
	}
}

func TestAutomationFlagsAreExclusive(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, env.context("linux"), "--config", env.configPath, "--setup_auto_backup", "--cancel_auto_backup")
	if err == nil {
		t.Fatal("expected error when both automation flags are given")
	}
}

func TestCancelAutoBackup(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("autostart entries are Linux only")
	}
	env := setupCLITestEnv(t)
	cc := env.context("linux")

	out, err := runCLI(t, cc, "--config", env.configPath, "--cancel_auto_backup")
	if err != nil {
		t.Fatalf("cancel without entry: %v", err)
	}
	if strings.TrimSpace(out) != "There was no auto backup set up." {
		t.Fatalf("unexpected output: %q", out)
	}

	entry := filepath.Join(cc.autostartDir, autostart.FileName)
	testsupport.WriteFile(t, entry, 10)
	out, err = runCLI(t, env.context("linux"), "--config", env.configPath, "--cancel_auto_backup")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	want := "Cancelled auto-backup (removed file in autostart called auto_kobo_backup.desktop)"
	if strings.TrimSpace(out) != want {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Fatalf("entry should be removed, stat err=%v", err)
	}
}

func TestSetupAutoBackupNeedsWatcherBinary(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("autostart entries are Linux only")
	}
	env := setupCLITestEnv(t)
	cc := env.context("linux")

	_, err := runCLI(t, cc, "--config", env.configPath, "--setup_auto_backup")
	if err == nil || !strings.Contains(err.Error(), "kobo-watch") {
		t.Fatalf("expected missing kobo-watch error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cc.autostartDir, autostart.FileName)); !os.IsNotExist(err) {
		t.Fatalf("no entry should be written without a watcher, stat err=%v", err)
	}
}
