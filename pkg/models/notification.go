package models

// Notification is an FDO desktop notification as captured from a Notify
// method call on the session bus. Immutable once decoded.
type Notification struct {
	AppName       string   `json:"app_name"`
	ReplacesID    uint32   `json:"replaces_id"`
	AppIcon       string   `json:"app_icon"`
	Summary       string   `json:"summary"`
	Body          string   `json:"body"`
	Actions       []Action `json:"actions"`
	Hints         Hints    `json:"hints"`
	ExpireTimeout int32    `json:"expire_timeout"`
}

// Action is an (id, localized label) pair offered by a notification.
type Action struct {
	ID        string `json:"id"`
	Localized string `json:"localized"`
}

// Hints is the decoded a{sv} hints record of a notification. All fields are
// optional on the wire; pointers distinguish "absent" from zero values.
//
// The mapstructure tags match the kebab-case hint keys defined by the
// Desktop Notifications specification.
type Hints struct {
	ActionIcons   *bool   `json:"action_icons,omitempty" mapstructure:"action-icons"`
	Category      *string `json:"category,omitempty" mapstructure:"category"`
	DesktopEntry  *string `json:"desktop_entry,omitempty" mapstructure:"desktop-entry"`
	Resident      *bool   `json:"resident,omitempty" mapstructure:"resident"`
	SoundFile     *string `json:"sound_file,omitempty" mapstructure:"sound-file"`
	SoundName     *string `json:"sound_name,omitempty" mapstructure:"sound-name"`
	SuppressSound *bool   `json:"suppress_sound,omitempty" mapstructure:"suppress-sound"`
	Transient     *bool   `json:"transient,omitempty" mapstructure:"transient"`
	SenderPID     *int64  `json:"sender_pid,omitempty" mapstructure:"sender-pid"`
	Urgency       *uint8  `json:"urgency,omitempty" mapstructure:"urgency"`
	X             *int32  `json:"x,omitempty" mapstructure:"x"`
	Y             *int32  `json:"y,omitempty" mapstructure:"y"`
}

// EnrichedNotification pairs a notification with the sender process id
// resolved through the connection cache. The resolved pid is independent of
// the notification's own sender-pid hint; the hint is only a fallback.
type EnrichedNotification struct {
	Notification Notification `json:"notification"`
	SenderPID    *int64       `json:"sender_pid,omitempty"`
}

// PID returns the best-effort process id for the notification: the resolved
// sender pid when the cache knew the peer, otherwise the sender-pid hint.
func (e *EnrichedNotification) PID() (int64, bool) {
	if e.SenderPID != nil {
		return *e.SenderPID, true
	}
	if e.Notification.Hints.SenderPID != nil {
		return *e.Notification.Hints.SenderPID, true
	}
	return 0, false
}
