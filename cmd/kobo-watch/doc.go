// Package main hosts kobo-watch, the session daemon started from the
// autostart entry. It waits for the Kobo to be connected and runs
// kobo-backup for each connection.
package main
