package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kobobackup/internal/backup"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	return buildRootCommand(newCommandContext(&configFlag))
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	var setupAuto, cancelAuto bool

	rootCmd := &cobra.Command{
		Use:           "kobo-backup",
		Short:         "Back up an attached Kobo e-reader",
		Long:          "Copies the mounted Kobo into a new kobo_backup_<date> folder under the backup directory.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case setupAuto:
				return setupAutoBackup(cmd, ctx)
			case cancelAuto:
				return cancelAutoBackup(cmd, ctx)
			default:
				return runBackup(cmd, ctx)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVar(&setupAuto, "setup_auto_backup", false, "Back up automatically whenever the Kobo is connected (Linux only)")
	rootCmd.Flags().BoolVar(&cancelAuto, "cancel_auto_backup", false, "Remove the automatic backup set up with --setup_auto_backup (Linux only)")
	rootCmd.MarkFlagsMutuallyExclusive("setup_auto_backup", "cancel_auto_backup")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}

func runBackup(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	out := cmd.OutOrStdout()
	opts := append([]backup.Option{backup.WithOutput(out)}, ctx.backupOptions...)
	runner, err := backup.New(cfg, logger, opts...)
	if err != nil {
		return err
	}
	result, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	if result.Outcome == backup.OutcomeCompleted {
		fmt.Fprintln(out, renderSummary(result))
	}
	return nil
}
