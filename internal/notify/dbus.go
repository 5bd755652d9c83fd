//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = dbus.ObjectPath("/org/freedesktop/Notifications")

	methodNotify = notifyService + ".Notify"
	methodClose  = notifyService + ".CloseNotification"
)

// sessionBus is swapped in tests.
var sessionBus = dbus.SessionBus

// caller is the part of dbus.BusObject the notifier needs.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// dbusNotifier talks to the freedesktop notification server.
type dbusNotifier struct {
	obj caller
}

// New returns a D-Bus notifier, or a beeep one when no session bus is reachable.
func New() (Notifier, error) {
	conn, err := sessionBus()
	if err != nil {
		return newBeeep(), nil //nolint:nilerr // no session bus
	}
	return &dbusNotifier{obj: conn.Object(notifyService, notifyPath)}, nil
}

func hints(n Notification) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(AppName),
	}
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	// app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout
	args := []any{
		AppName, n.ReplacesID, n.Icon, n.Title, n.Body,
		[]string{}, hints(n), n.Timeout,
	}
	var id uint32
	if err := d.obj.Call(methodNotify, 0, args...).Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	return d.obj.Call(methodClose, 0, id).Err
}
