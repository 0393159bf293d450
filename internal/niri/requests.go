package niri

// eventStreamRequest is the request that switches the connection into event
// streaming mode. On the wire it is the bare string "EventStream".
const eventStreamRequest = "EventStream"

// actionRequest wraps a compositor action.
type actionRequest struct {
	Action action `json:"Action"`
}

type action struct {
	FocusWindow *focusWindowAction `json:"FocusWindow,omitempty"`
}

type focusWindowAction struct {
	ID uint64 `json:"id"`
}

func focusWindowRequest(id uint64) actionRequest {
	return actionRequest{Action: action{FocusWindow: &focusWindowAction{ID: id}}}
}
