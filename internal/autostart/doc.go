// Package autostart installs and removes the desktop autostart entry that
// launches the kobo-watch attach-event watcher at login. Only Linux desktops
// honour the entry.
package autostart
