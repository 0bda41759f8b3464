// Package notifications delivers the desktop side effects of a backup: a
// notification when a device is attached or a backup finishes, and opening
// the new backup in the file browser.
//
// The desktop implementation talks to the freedesktop D-Bus services
// (org.freedesktop.Notifications and org.freedesktop.FileManager1) and falls
// back to notify-send and the platform's open command when the bus is not
// reachable. Callers treat every error as advisory; nothing here should stop
// a backup from being reported as complete.
//
// All callers depend only on the Service interface so tests and headless
// runs can swap in the no-op implementation.
package notifications
