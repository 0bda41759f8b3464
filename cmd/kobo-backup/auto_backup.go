package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kobobackup/internal/autostart"
	"kobobackup/internal/notifications"
	"kobobackup/internal/watcher"
)

const unsupportedAutomationMessage = "The automation feature is currently only supported on Linux. Exiting...."

func (c *commandContext) installerOptions(extra ...autostart.Option) []autostart.Option {
	opts := make([]autostart.Option, 0, len(extra)+1)
	if c.autostartDir != "" {
		opts = append(opts, autostart.WithDir(c.autostartDir))
	}
	return append(opts, extra...)
}

// childConfigPath is the config file the watcher should hand to the backup
// process: the one this process actually loaded, if any.
func (c *commandContext) childConfigPath() string {
	if c.configExists {
		return c.configPath
	}
	return ""
}

func cancelAutoBackup(cmd *cobra.Command, ctx *commandContext) error {
	out := cmd.OutOrStdout()
	if !autostart.Supported(ctx.goos) {
		fmt.Fprintln(out, unsupportedAutomationMessage)
		return nil
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	installer := autostart.New("", "", logger, ctx.installerOptions()...)
	err = installer.Uninstall()
	switch {
	case errors.Is(err, autostart.ErrNotInstalled):
		fmt.Fprintln(out, "There was no auto backup set up.")
		return nil
	case errors.Is(err, autostart.ErrUnsupportedPlatform):
		fmt.Fprintln(out, unsupportedAutomationMessage)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "Cancelled auto-backup (removed file in autostart called %s)\n", autostart.FileName)
	return nil
}

// setupAutoBackup installs the autostart entry and then keeps watching in
// the foreground until interrupted, so the first connection is handled
// without logging out.
func setupAutoBackup(cmd *cobra.Command, ctx *commandContext) error {
	out := cmd.OutOrStdout()
	if !autostart.Supported(ctx.goos) {
		fmt.Fprintln(out, unsupportedAutomationMessage)
		return nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate kobo-backup executable: %w", err)
	}
	watcherPath, err := autostart.ResolveWatcher(exe)
	if err != nil {
		return err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	notifier := notifications.NewService(cfg, logger)
	installer := autostart.New(watcherPath, workDir, logger,
		ctx.installerOptions(autostart.WithOpener(notifier.OpenFolder))...)
	if err := installer.Install(cmd.Context()); err != nil {
		if errors.Is(err, autostart.ErrUnsupportedPlatform) {
			fmt.Fprintln(out, unsupportedAutomationMessage)
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "Set up auto-backup (created %s in autostart).\n", autostart.FileName)

	lock, err := watcher.AcquireInstanceLock(watcher.DefaultLockPath())
	if errors.Is(err, watcher.ErrAlreadyRunning) {
		fmt.Fprintln(out, "kobo-watch is already running and will back up the Kobo when it is connected.")
		return nil
	}
	if err != nil {
		return err
	}
	defer lock.Release() //nolint:errcheck

	w, err := watcher.NewFromConfig(cfg, ctx.childConfigPath(), exe, logger)
	if err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Waiting for %s to be connected. Press Ctrl+C to stop.\n", cfg.Device.Label)
	return w.Run(runCtx)
}
