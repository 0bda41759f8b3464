package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kobobackup/internal/autostart"
	"kobobackup/internal/config"
	"kobobackup/internal/device"
	"kobobackup/internal/preflight"
	"kobobackup/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependencies, and device status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := newStatusPrinter(cmd.OutOrStdout())

			p.section("Configuration")
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, using defaults)"
			}
			p.line("Config", statusInfo, source)
			p.line("Device label", statusInfo, cfg.Device.Label)
			p.line("Backup folder", statusInfo, cfg.Backup.BaseDir)
			p.line("Watcher source", statusInfo, cfg.Watcher.Source)
			p.line("Notifications", statusInfo, yesNo(cfg.Notifications.Enabled))

			p.section("Dependencies")
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				switch {
				case dep.Available:
					p.line(dep.Name, statusOK, dep.Command)
				case dep.Optional:
					p.line(dep.Name, statusWarn, dep.Detail+" (optional)")
				default:
					p.line(dep.Name, statusError, dep.Detail)
				}
			}

			p.section("Checks")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				p.check(result.Name, result.Passed, result.Detail)
			}
			backupsLine(p, cfg)

			p.section("Device")
			locator, err := ctx.locator(cfg)
			if err != nil {
				p.line("Kobo", statusWarn, err.Error())
			} else {
				deviceLine(cmd.Context(), p, locator, cfg.Device.Label)
			}

			p.section("Automation")
			autostartLine(p, ctx)
			return nil
		},
	}
}

// locator builds the platform locator unless the context carries one.
func (c *commandContext) locator(cfg *config.Config) (device.Locator, error) {
	if c.deviceLocator != nil {
		return c.deviceLocator, nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return device.New(cfg, logger)
}

func deviceLine(ctx context.Context, p *statusPrinter, locator device.Locator, label string) {
	probe := preflight.ProbeDevice(ctx, locator, label)
	kind := statusInfo
	switch {
	case probe.Path != "":
		kind = statusOK
	case len(probe.Candidates) > 0:
		kind = statusError
	case probe.Err != nil && !errors.Is(probe.Err, device.ErrNotFound):
		kind = statusWarn
	}
	p.line("Kobo", kind, probe.Detail()+" via "+probe.Strategy)
}

func backupsLine(p *statusPrinter, cfg *config.Config) {
	entries, err := store.New(cfg, nil).List()
	switch {
	case err != nil:
		p.line("Backups", statusWarn, err.Error())
	case len(entries) == 0:
		p.line("Backups", statusInfo, "none yet")
	default:
		p.line("Backups", statusInfo, fmt.Sprintf("%d, latest %s", len(entries), entries[0].Name))
	}
}

func autostartLine(p *statusPrinter, ctx *commandContext) {
	if !autostart.Supported(ctx.goos) {
		p.line("Auto backup", statusInfo, "not supported on "+ctx.goos)
		return
	}
	installer := autostart.New("", "", nil, ctx.installerOptions()...)
	installed, err := installer.Installed()
	switch {
	case err != nil:
		p.line("Auto backup", statusWarn, err.Error())
	case installed:
		p.line("Auto backup", statusOK, "enabled ("+installer.Path()+")")
	default:
		p.line("Auto backup", statusInfo, "not set up")
	}
}
