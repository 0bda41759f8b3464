package main

import "kobobackup/internal/config"

// applyWatcherDefaults routes logs to a file when none is configured; the
// watcher runs from the session autostart and has no terminal.
func applyWatcherDefaults(cfg *config.Config) {
	if cfg == nil || cfg.Logging.File != "" {
		return
	}
	cfg.Logging.File = config.DefaultWatcherLogFile()
}

func childConfigPath(path string, exists bool) string {
	if !exists {
		return ""
	}
	return path
}
