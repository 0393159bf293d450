package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/models"
)

const notificationBuffer = 64

// Monitor captures Notify method calls system-wide and turns them into
// enriched notifications. It owns a dedicated monitor connection; the sender
// pid is resolved through the connection cache.
type Monitor struct {
	notifications chan models.EnrichedNotification
	logger        *logrus.Entry
}

// StartMonitor subscribes to Notify calls on the session bus and starts the
// monitor worker. The worker runs until the bus connection dies or ctx is
// cancelled.
func StartMonitor(ctx context.Context, cache *ConnectionCache) (*Monitor, error) {
	rule := fmt.Sprintf("interface='%s',member='%s'", notificationsInterface, notifyMember)
	conn, err := newMonitorConn(rule)
	if err != nil {
		return nil, err
	}

	messages := make(chan *dbus.Message, notificationBuffer)
	conn.Eavesdrop(messages)

	m := &Monitor{
		notifications: make(chan models.EnrichedNotification, notificationBuffer),
		logger:        logging.NewLogger("notify-monitor"),
	}
	go m.run(ctx, conn, messages, cache)
	return m, nil
}

// Notifications returns the stream of enriched notifications. The channel is
// closed when the monitor stops.
func (m *Monitor) Notifications() <-chan models.EnrichedNotification {
	return m.notifications
}

func (m *Monitor) run(ctx context.Context, conn *dbus.Conn, messages chan *dbus.Message, cache *ConnectionCache) {
	defer close(m.notifications)
	defer conn.Close()

	for {
		var msg *dbus.Message
		var ok bool
		select {
		case <-ctx.Done():
			return
		case msg, ok = <-messages:
			if !ok {
				m.logger.Warn("session bus monitor stream closed")
				return
			}
		}

		if !isNotifyCall(msg) {
			continue
		}

		notification, err := decodeNotification(msg.Body)
		if err != nil {
			m.logger.WithError(err).Debug("dropping undecodable Notify call")
			continue
		}

		enriched := models.EnrichedNotification{Notification: notification}
		if sender := senderName(msg); sender != "" {
			if pid := cache.Get(ctx, sender); pid != nil {
				resolved := int64(*pid)
				enriched.SenderPID = &resolved
			}
		}

		select {
		case m.notifications <- enriched:
		case <-ctx.Done():
			return
		}
	}
}

func isNotifyCall(msg *dbus.Message) bool {
	if msg.Type != dbus.TypeMethodCall {
		return false
	}
	iface, _ := msg.Headers[dbus.FieldInterface].Value().(string)
	member, _ := msg.Headers[dbus.FieldMember].Value().(string)
	return iface == notificationsInterface && member == notifyMember
}

func senderName(msg *dbus.Message) string {
	variant, ok := msg.Headers[dbus.FieldSender]
	if !ok {
		return ""
	}
	sender, _ := variant.Value().(string)
	return sender
}

// decodeNotification decodes the positional Notify arguments:
// (app_name s, replaces_id u, app_icon s, summary s, body s, actions as,
// hints a{sv}, expire_timeout i).
func decodeNotification(body []interface{}) (models.Notification, error) {
	var n models.Notification
	if len(body) < 8 {
		return n, fmt.Errorf("Notify call has %d arguments, want 8", len(body))
	}

	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return n, fmt.Errorf("app_name: unexpected type %T", body[0])
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return n, fmt.Errorf("replaces_id: unexpected type %T", body[1])
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return n, fmt.Errorf("app_icon: unexpected type %T", body[2])
	}
	if n.Summary, ok = body[3].(string); !ok {
		return n, fmt.Errorf("summary: unexpected type %T", body[3])
	}
	if n.Body, ok = body[4].(string); !ok {
		return n, fmt.Errorf("body: unexpected type %T", body[4])
	}

	actions, ok := body[5].([]string)
	if !ok {
		return n, fmt.Errorf("actions: unexpected type %T", body[5])
	}
	n.Actions = decodeActions(actions)

	hints, ok := body[6].(map[string]dbus.Variant)
	if !ok {
		return n, fmt.Errorf("hints: unexpected type %T", body[6])
	}
	decoded, err := decodeHints(hints)
	if err != nil {
		return n, fmt.Errorf("hints: %w", err)
	}
	n.Hints = decoded

	if n.ExpireTimeout, ok = body[7].(int32); !ok {
		return n, fmt.Errorf("expire_timeout: unexpected type %T", body[7])
	}

	return n, nil
}

// decodeActions pairs up the flat (id, label, id, label, ...) action list.
// A trailing unpaired id is dropped.
func decodeActions(flat []string) []models.Action {
	actions := make([]models.Action, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		actions = append(actions, models.Action{ID: flat[i], Localized: flat[i+1]})
	}
	return actions
}

// decodeHints unwraps the variant values and decodes the known keys.
// Notification daemons disagree about integer widths, so the decode is
// weakly typed.
func decodeHints(hints map[string]dbus.Variant) (models.Hints, error) {
	plain := make(map[string]interface{}, len(hints))
	for key, variant := range hints {
		plain[key] = variant.Value()
	}

	var out models.Hints
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(plain); err != nil {
		return out, err
	}
	return out, nil
}
