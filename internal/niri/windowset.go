package niri

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/models"
)

// phase is the buffering state of the window set. niri guarantees that one
// full window list and one full workspace list arrive before any update
// events, but not in which order, so the set buffers whichever arrives first
// and only reports ready once both have been seen.
type phase int

const (
	phaseUninitialized phase = iota
	phaseWindowsOnly
	phaseWorkspacesOnly
	phaseReady
)

func (p phase) String() string {
	switch p {
	case phaseWindowsOnly:
		return "windows only"
	case phaseWorkspacesOnly:
		return "workspaces only"
	case phaseReady:
		return "ready"
	default:
		return "uninitialised"
	}
}

// WindowSet reconstructs the compositor's window and workspace state from
// the event stream. It owns its maps exclusively; consumers only ever see
// snapshot copies.
type WindowSet struct {
	phase phase

	// Buffered full lists while the other side has not arrived yet.
	pendingWindows    []models.Window
	pendingWorkspaces []models.Workspace

	windows    map[uint64]*models.Window
	workspaces map[uint64]*models.Workspace

	logger *logrus.Entry
}

// NewWindowSet creates an empty, uninitialized window set.
func NewWindowSet() *WindowSet {
	return &WindowSet{logger: logging.NewLogger("window-set")}
}

// String reports the buffering phase, mirroring the values used in
// unexpected-event log lines.
func (ws *WindowSet) String() string {
	return ws.phase.String()
}

// Ready reports whether both full lists have been observed.
func (ws *WindowSet) Ready() bool {
	return ws.phase == phaseReady
}

// Apply feeds one event into the state machine. Once the set is ready it
// returns a snapshot after every event; before that it returns nil.
func (ws *WindowSet) Apply(event *Event) *models.Snapshot {
	switch {
	case event.WindowsChanged != nil:
		ws.applyWindowsChanged(event.WindowsChanged.Windows)
	case event.WorkspacesChanged != nil:
		ws.applyWorkspacesChanged(event.WorkspacesChanged.Workspaces)
	case event.WindowClosed != nil:
		if ws.ready("WindowClosed") {
			delete(ws.windows, event.WindowClosed.ID)
		}
	case event.WindowOpenedOrChanged != nil:
		if ws.ready("WindowOpenedOrChanged") {
			ws.upsertWindow(event.WindowOpenedOrChanged.Window)
		}
	case event.WindowFocusChanged != nil:
		if ws.ready("WindowFocusChanged") {
			ws.setFocus(event.WindowFocusChanged.ID)
		}
	case event.WindowLayoutsChanged != nil:
		if ws.phase == phaseReady {
			for _, change := range event.WindowLayoutsChanged.Changes {
				if window, ok := ws.windows[change.WindowID]; ok {
					window.Layout = change.Layout
				}
			}
		}
	case event.WorkspaceActivated != nil:
		if ws.phase == phaseReady {
			activated := event.WorkspaceActivated
			for _, workspace := range ws.workspaces {
				workspace.IsFocused = activated.Focused && activated.ID == workspace.ID
			}
		}
	default:
		// Event kinds this core does not consume.
	}

	if ws.phase == phaseReady {
		snapshot := ws.snapshot()
		return &snapshot
	}
	return nil
}

func (ws *WindowSet) applyWindowsChanged(windows []models.Window) {
	switch ws.phase {
	case phaseWorkspacesOnly:
		ws.initialize(windows, ws.pendingWorkspaces)
	case phaseUninitialized, phaseWindowsOnly:
		ws.pendingWindows = windows
		ws.phase = phaseWindowsOnly
	case phaseReady:
		ws.replaceWindows(windows)
	}
}

func (ws *WindowSet) applyWorkspacesChanged(workspaces []models.Workspace) {
	switch ws.phase {
	case phaseWindowsOnly:
		ws.initialize(ws.pendingWindows, workspaces)
	case phaseUninitialized, phaseWorkspacesOnly:
		ws.pendingWorkspaces = workspaces
		ws.phase = phaseWorkspacesOnly
	case phaseReady:
		ws.replaceWorkspaces(workspaces)
	}
}

func (ws *WindowSet) initialize(windows []models.Window, workspaces []models.Workspace) {
	ws.windows = make(map[uint64]*models.Window)
	ws.workspaces = make(map[uint64]*models.Workspace)
	ws.replaceWorkspaces(workspaces)
	ws.replaceWindows(windows)
	ws.pendingWindows = nil
	ws.pendingWorkspaces = nil
	ws.phase = phaseReady
}

// ready reports whether update events can be applied, logging the ones that
// arrive too early. The compositor is assumed to always send the full lists
// first, so this is defensive.
func (ws *WindowSet) ready(event string) bool {
	if ws.phase != phaseReady {
		ws.logger.WithFields(logrus.Fields{"state": ws.String(), "event": event}).
			Warn("unexpected state for update event")
		return false
	}
	return true
}

func (ws *WindowSet) replaceWindows(windows []models.Window) {
	ws.windows = make(map[uint64]*models.Window, len(windows))
	for i := range windows {
		window := windows[i]
		ws.windows[window.ID] = &window
	}
}

func (ws *WindowSet) replaceWorkspaces(workspaces []models.Workspace) {
	ws.workspaces = make(map[uint64]*models.Workspace, len(workspaces))
	for i := range workspaces {
		workspace := workspaces[i]
		ws.workspaces[workspace.ID] = &workspace
	}
}

func (ws *WindowSet) upsertWindow(window models.Window) {
	// If the incoming window holds focus, every other window loses it.
	if window.IsFocused {
		for _, other := range ws.windows {
			other.IsFocused = false
		}
	}
	ws.windows[window.ID] = &window
}

func (ws *WindowSet) setFocus(id *uint64) {
	for _, window := range ws.windows {
		window.IsFocused = id != nil && window.ID == *id
	}
}

// snapshot derives the consumer view: every window attributed to a known
// workspace, carrying that workspace's output name. Windows whose workspace
// is unset or unknown cannot be placed or filtered downstream and are
// omitted.
func (ws *WindowSet) snapshot() models.Snapshot {
	windows := make([]models.SnapshotWindow, 0, len(ws.windows))
	for _, window := range ws.windows {
		if window.WorkspaceID == nil {
			continue
		}
		workspace, ok := ws.workspaces[*window.WorkspaceID]
		if !ok {
			continue
		}
		output := ""
		if workspace.Output != nil {
			output = *workspace.Output
		}
		windows = append(windows, models.SnapshotWindow{Window: *window, Output: output})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].ID < windows[j].ID })

	workspaces := make([]models.Workspace, 0, len(ws.workspaces))
	for _, workspace := range ws.workspaces {
		workspaces = append(workspaces, *workspace)
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })

	return models.Snapshot{Windows: windows, Workspaces: workspaces}
}
