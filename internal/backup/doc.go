// Package backup sequences a complete backup run.
//
// A run locates the device by label, prepares the base directory, takes the
// run lock, picks the destination for the current minute, copies the device
// tree, and prints usage summaries for the new and previous backups. The
// desktop notification and file browser launch that follow are best effort.
//
// Benign endings (no device, destination already taken this minute, another
// run in progress) are reported through Result.Outcome with a nil error.
// Everything else is returned as an error so the CLI can exit non-zero.
package backup
