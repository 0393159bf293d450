package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/niritools/taskbar/logging"
)

// StartNameOwnerMonitor subscribes to NameOwnerChanged signals on a
// dedicated monitor connection and decodes them for the connection cache.
// The returned channel is closed when the subscription dies.
func StartNameOwnerMonitor(ctx context.Context) (<-chan NameOwnerChange, error) {
	rule := fmt.Sprintf("type='signal',interface='%s',member='%s'", busInterface, nameOwnerMember)
	conn, err := newMonitorConn(rule)
	if err != nil {
		return nil, err
	}

	messages := make(chan *dbus.Message, notificationBuffer)
	conn.Eavesdrop(messages)

	changes := make(chan NameOwnerChange, notificationBuffer)
	logger := logging.NewLogger("bus-lifecycle")

	go func() {
		defer close(changes)
		defer conn.Close()

		for {
			var msg *dbus.Message
			var ok bool
			select {
			case <-ctx.Done():
				return
			case msg, ok = <-messages:
				if !ok {
					logger.Warn("bus lifecycle monitor stream closed")
					return
				}
			}

			change, ok := decodeNameOwnerChanged(msg)
			if !ok {
				continue
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

func decodeNameOwnerChanged(msg *dbus.Message) (NameOwnerChange, bool) {
	if msg.Type != dbus.TypeSignal {
		return NameOwnerChange{}, false
	}
	member, _ := msg.Headers[dbus.FieldMember].Value().(string)
	if member != nameOwnerMember {
		return NameOwnerChange{}, false
	}
	if len(msg.Body) < 3 {
		return NameOwnerChange{}, false
	}

	name, ok1 := msg.Body[0].(string)
	oldOwner, ok2 := msg.Body[1].(string)
	newOwner, ok3 := msg.Body[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return NameOwnerChange{}, false
	}
	return NameOwnerChange{Name: name, OldOwner: oldOwner, NewOwner: newOwner}, true
}
