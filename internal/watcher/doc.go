// Package watcher waits for the labelled device to be attached and launches
// a complete backup run for it.
//
// Attach events come from one Source: udev netlink uevents on Linux, or
// directory creation under the desktop automount roots (fsnotify). Block
// device events arrive before the desktop mounts the volume, so the trigger
// polls the device locator until the mount appears or watcher.mount_wait
// elapses. The backup itself runs as a separate process and the watcher waits
// for it to exit before looking at further events; events that arrived in
// the meantime are dropped.
package watcher
