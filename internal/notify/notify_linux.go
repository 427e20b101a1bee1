//go:build linux

package notify

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// send uses the freedesktop.org notification service on the session bus.
func send(ctx context.Context, title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	return obj.CallWithContext(ctx, "org.freedesktop.Notifications.Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{},
		map[string]dbus.Variant{}, int32(opts.Timeout.Milliseconds())).Err
}
