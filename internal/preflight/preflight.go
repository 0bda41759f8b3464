package preflight

import (
	"context"

	"kobobackup/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks that apply to the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckBaseDirectory("Backup directory", cfg.Backup.BaseDir)}
	if cfg.Logging.File != "" {
		results = append(results, CheckParentWritable("Log file", cfg.Logging.File))
	}
	return results
}
