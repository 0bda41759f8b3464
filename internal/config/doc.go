// Package config loads, normalizes, and validates kobo-backup configuration.
//
// It supplies repository defaults (the KOBOeReader label and ~/Backups/kobo
// base directory), expands user paths including tilde shortcuts and $USER
// references, reads TOML files, and honours the KOBO_BACKUP_LABEL and
// KOBO_BACKUP_DIR environment overrides. The orchestrator, the watcher, and
// the CLI all receive their settings from the Config type rather than from
// package-level constants, which keeps fixture-directory testing trivial.
package config
