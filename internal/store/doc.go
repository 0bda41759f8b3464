// Package store manages the backup base directory: creating it, finding the
// most recent backup, naming new backup directories by minute, listing what
// exists, and guarding a run with an advisory lock file.
package store
