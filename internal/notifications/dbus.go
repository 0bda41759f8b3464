package notifications

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod         = notificationsService + ".Notify"

	fileManagerService = "org.freedesktop.FileManager1"
	fileManagerPath    = dbus.ObjectPath("/org/freedesktop/FileManager1")
	showFoldersMethod  = fileManagerService + ".ShowFolders"

	// expireDefault lets the notification server pick the display time.
	expireDefault = int32(-1)
)

// dbusNotifier calls org.freedesktop.Notifications.Notify on the session bus.
type dbusNotifier struct{}

func (dbusNotifier) notify(ctx context.Context, msg message) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(notificationsService, notificationsPath).CallWithContext(ctx, notifyMethod, 0,
		appName,                 // app_name
		uint32(0),               // replaces_id
		"drive-removable-media", // app_icon
		msg.summary,
		msg.body,
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		expireDefault,
	)
	if call.Err != nil {
		return fmt.Errorf("%s: %w", notifyMethod, call.Err)
	}
	return nil
}

// dbusOpener asks the desktop file manager to show a folder.
type dbusOpener struct{}

func (dbusOpener) open(ctx context.Context, path string) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(fileManagerService, fileManagerPath).CallWithContext(ctx, showFoldersMethod, 0,
		[]string{fileURI(path)},
		"", // startup id
	)
	if call.Err != nil {
		return fmt.Errorf("%s: %w", showFoldersMethod, call.Err)
	}
	return nil
}

func fileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
