// Package models defines the wire-level and snapshot data types shared across
// the taskbar core: compositor windows and workspaces, snapshots handed to
// consumers, and desktop notifications captured off the session bus.
package models

// Window is a toplevel window as reported by the niri event stream.
//
// Identity never changes; everything else is mutated in place as events
// arrive. Optional fields mirror the wire format, where the compositor may
// omit them for surfaces it cannot attribute yet.
type Window struct {
	ID          uint64       `json:"id"`
	Title       *string      `json:"title"`
	AppID       *string      `json:"app_id"`
	PID         *int32       `json:"pid"`
	WorkspaceID *uint64      `json:"workspace_id"`
	IsFocused   bool         `json:"is_focused"`
	IsFloating  bool         `json:"is_floating"`
	Layout      WindowLayout `json:"layout"`
}

// WindowLayout describes the position of a window within the scrolling layout.
type WindowLayout struct {
	// PosInScrollingLayout holds the (column, row) of the tile, when the
	// window is part of the scrolling layout.
	PosInScrollingLayout *[2]int `json:"pos_in_scrolling_layout"`
}

// Workspace is a niri workspace.
type Workspace struct {
	ID             uint64  `json:"id"`
	Idx            uint8   `json:"idx"`
	Name           *string `json:"name"`
	Output         *string `json:"output"`
	IsActive       bool    `json:"is_active"`
	IsFocused      bool    `json:"is_focused"`
	ActiveWindowID *uint64 `json:"active_window_id"`
}

// SnapshotWindow is a window paired with the output its workspace is on.
// Windows that cannot be attributed to an output never appear in a snapshot.
type SnapshotWindow struct {
	Window
	Output string `json:"output"`
}

// Snapshot is an immutable, fully-populated view of all windows and
// workspaces at a point in time. The window-set state machine hands out
// copies; consumers never share mutable state with it.
type Snapshot struct {
	Windows    []SnapshotWindow `json:"windows"`
	Workspaces []Workspace      `json:"workspaces"`
}

// FindWindow returns the snapshot window with the given id, if present.
func (s *Snapshot) FindWindow(id uint64) (*SnapshotWindow, bool) {
	for i := range s.Windows {
		if s.Windows[i].ID == id {
			return &s.Windows[i], true
		}
	}
	return nil, false
}
