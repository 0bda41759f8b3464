// Package logs reads the watcher's log file for `kobo-backup logs`.
//
// Last returns the trailing lines with bounded memory and Follow streams
// lines appended afterwards. The file is rotated by lumberjack, so Follow
// restarts from the beginning whenever the file shrinks below the saved
// offset.
package logs
