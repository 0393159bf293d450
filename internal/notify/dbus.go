package notify

import (
	"github.com/godbus/dbus/v5"

	"github.com/niritools/taskbar/errors"
)

const (
	notificationsInterface = "org.freedesktop.Notifications"
	notifyMember           = "Notify"

	busInterface        = "org.freedesktop.DBus"
	nameOwnerMember     = "NameOwnerChanged"
	connectionPIDMethod = "org.freedesktop.DBus.GetConnectionUnixProcessID"
	becomeMonitorMethod = "org.freedesktop.DBus.Monitoring.BecomeMonitor"
)

// newMonitorConn opens a dedicated session-bus connection and switches it
// into monitor mode with the given match rules. Monitor connections cannot
// make method calls afterwards, which is why resolution happens on a
// separate connection.
func newMonitorConn(rules ...string) (*dbus.Conn, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, errors.DBusConnect(err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, errors.DBusConnect(err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, errors.DBusConnect(err)
	}

	call := conn.BusObject().Call(becomeMonitorMethod, 0, rules, uint32(0))
	if call.Err != nil {
		conn.Close()
		return nil, errors.DBusMonitor(call.Err)
	}
	return conn, nil
}

// BusResolver resolves peer names through the session bus daemon.
type BusResolver struct {
	conn *dbus.Conn
}

// NewBusResolver connects to the (shared) session bus for introspection
// calls.
func NewBusResolver() (*BusResolver, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.DBusConnect(err)
	}
	return &BusResolver{conn: conn}, nil
}

// ConnectionPID implements PIDResolver.
func (r *BusResolver) ConnectionPID(peer string) (uint32, error) {
	var pid uint32
	if err := r.conn.BusObject().Call(connectionPIDMethod, 0, peer).Store(&pid); err != nil {
		return 0, err
	}
	return pid, nil
}
