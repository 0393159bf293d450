package niri

import (
	"encoding/json"
	"fmt"

	"github.com/niritools/taskbar/pkg/models"
)

// Event is one compositor event, decoded from its externally tagged JSON
// form. Exactly one of the variant pointers is set; events this core does
// not consume decode to the zero Event and are ignored upstream.
type Event struct {
	WindowsChanged        *WindowsChanged        `json:"WindowsChanged,omitempty"`
	WorkspacesChanged     *WorkspacesChanged     `json:"WorkspacesChanged,omitempty"`
	WindowClosed          *WindowClosed          `json:"WindowClosed,omitempty"`
	WindowOpenedOrChanged *WindowOpenedOrChanged `json:"WindowOpenedOrChanged,omitempty"`
	WindowFocusChanged    *WindowFocusChanged    `json:"WindowFocusChanged,omitempty"`
	WindowLayoutsChanged  *WindowLayoutsChanged  `json:"WindowLayoutsChanged,omitempty"`
	WorkspaceActivated    *WorkspaceActivated    `json:"WorkspaceActivated,omitempty"`
}

// WindowsChanged carries the full window list. Sent once at stream start and
// again whenever niri decides to resynchronize.
type WindowsChanged struct {
	Windows []models.Window `json:"windows"`
}

// WorkspacesChanged carries the full workspace list.
type WorkspacesChanged struct {
	Workspaces []models.Workspace `json:"workspaces"`
}

// WindowClosed reports a destroyed window.
type WindowClosed struct {
	ID uint64 `json:"id"`
}

// WindowOpenedOrChanged reports a new or mutated window.
type WindowOpenedOrChanged struct {
	Window models.Window `json:"window"`
}

// WindowFocusChanged reports the newly focused window, or nothing when focus
// left all toplevels.
type WindowFocusChanged struct {
	ID *uint64 `json:"id"`
}

// WindowLayoutsChanged carries a batch of per-window layout updates.
type WindowLayoutsChanged struct {
	Changes []LayoutChange `json:"changes"`
}

// LayoutChange is one (window id, layout) pair. On the wire it is a
// two-element array, not an object.
type LayoutChange struct {
	WindowID uint64
	Layout   models.WindowLayout
}

// UnmarshalJSON decodes the [id, layout] pair form.
func (l *LayoutChange) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("layout change: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.WindowID); err != nil {
		return fmt.Errorf("layout change window id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Layout); err != nil {
		return fmt.Errorf("layout change layout: %w", err)
	}
	return nil
}

// MarshalJSON encodes the pair form; this keeps round trips symmetric for
// tests and fixtures.
func (l LayoutChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.WindowID, l.Layout})
}

// WorkspaceActivated reports a workspace becoming active on its output, and
// whether it also took focus.
type WorkspaceActivated struct {
	ID      uint64 `json:"id"`
	Focused bool   `json:"focused"`
}

// Name returns the variant name of the event, for log lines.
func (e *Event) Name() string {
	switch {
	case e.WindowsChanged != nil:
		return "WindowsChanged"
	case e.WorkspacesChanged != nil:
		return "WorkspacesChanged"
	case e.WindowClosed != nil:
		return "WindowClosed"
	case e.WindowOpenedOrChanged != nil:
		return "WindowOpenedOrChanged"
	case e.WindowFocusChanged != nil:
		return "WindowFocusChanged"
	case e.WindowLayoutsChanged != nil:
		return "WindowLayoutsChanged"
	case e.WorkspaceActivated != nil:
		return "WorkspaceActivated"
	default:
		return "ignored"
	}
}
