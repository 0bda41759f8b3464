// Package logging assembles structured slog loggers and attribute helpers used
// by the backup CLI and the attach-event watcher.
//
// It owns the console and JSON handlers, level parsing, and the optional
// rotating log file, and it defines the standard field keys (component,
// run_id, event_type, error_hint, impact) so warnings carry a cause, an
// impact, and a next step. A no-op logger is provided for tests and for
// wiring code that cannot fail.
package logging
