package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kobobackup/internal/config"
	"kobobackup/internal/logging"
	"kobobackup/internal/watcher"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var lockFlag string

	cmd := &cobra.Command{
		Use:           "kobo-watch",
		Short:         "Back up the Kobo whenever it is connected",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyWatcherDefaults(cfg)

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lockPath := strings.TrimSpace(lockFlag)
			if lockPath == "" {
				lockPath = watcher.DefaultLockPath()
			}
			lock, err := watcher.AcquireInstanceLock(lockPath)
			if errors.Is(err, watcher.ErrAlreadyRunning) {
				logger.Info("another watcher is running; exiting", logging.String(logging.FieldPath, lockPath))
				return nil
			}
			if err != nil {
				return err
			}
			defer lock.Release() //nolint:errcheck

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate kobo-watch executable: %w", err)
			}
			w, err := watcher.NewFromConfig(cfg, childConfigPath(path, exists), exe, logger)
			if err != nil {
				return err
			}
			err = w.Run(cmd.Context())
			logger.Info("kobo-watch shutting down")
			return err
		},
	}

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&lockFlag, "lock", "", "Instance lock path (defaults to the XDG runtime directory)")
	return cmd
}
