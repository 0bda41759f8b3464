package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kobobackup/internal/logging"
	"kobobackup/internal/store"
	"kobobackup/internal/usage"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List existing backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			st := store.New(cfg, logger)
			entries, err := st.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", st.Base())
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				files, size := "?", "?"
				if summary, err := usage.Summarize(entry.Path); err == nil {
					files = usage.FormatCount(summary.Files)
					size = summary.Human()
				} else {
					logger.Debug("could not measure backup",
						logging.String(logging.FieldPath, entry.Path),
						logging.Error(err),
					)
				}
				rows = append(rows, []string{
					entry.Name,
					entry.ModTime.Format("2006-01-02 15:04"),
					files,
					size,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "Name"},
				{title: "Modified"},
				{title: "Files", numeric: true},
				{title: "Size", numeric: true},
			}, rows))
			fmt.Fprintf(out, "%d backups in %s\n", len(entries), st.Base())
			return nil
		},
	}
}
