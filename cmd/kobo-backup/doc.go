// Package main hosts the kobo-backup CLI entrypoint and command graph.
//
// Running the binary with no subcommand performs one backup of the attached
// Kobo into a new timestamped folder. The --setup_auto_backup and
// --cancel_auto_backup flags manage the Linux autostart entry that keeps the
// kobo-watch trigger running in the desktop session. Subcommands list
// existing backups, report environment status, scaffold a configuration file,
// and send a test notification.
//
// Keep this package lean: backup semantics live in internal/backup and its
// collaborators; commands here resolve configuration, build loggers, and
// render results.
package main
