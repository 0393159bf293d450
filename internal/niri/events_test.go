package niri

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niritools/taskbar/pkg/models"
)

func TestEventDecode(t *testing.T) {
	testCases := []struct {
		name  string
		line  string
		check func(t *testing.T, ev *Event)
	}{
		{
			name: "windows changed",
			line: `{"WindowsChanged":{"windows":[{"id":7,"title":"term","app_id":"foot","pid":4242,"workspace_id":1,"is_focused":true,"is_floating":false,"layout":{"pos_in_scrolling_layout":[0,0]}}]}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WindowsChanged)
				require.Len(t, ev.WindowsChanged.Windows, 1)
				w := ev.WindowsChanged.Windows[0]
				assert.Equal(t, uint64(7), w.ID)
				require.NotNil(t, w.AppID)
				assert.Equal(t, "foot", *w.AppID)
				require.NotNil(t, w.PID)
				assert.Equal(t, int32(4242), *w.PID)
				assert.True(t, w.IsFocused)
			},
		},
		{
			name: "workspaces changed",
			line: `{"WorkspacesChanged":{"workspaces":[{"id":1,"idx":0,"name":null,"output":"DP-1","is_active":true,"is_focused":true,"active_window_id":7}]}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WorkspacesChanged)
				require.Len(t, ev.WorkspacesChanged.Workspaces, 1)
				ws := ev.WorkspacesChanged.Workspaces[0]
				assert.Equal(t, uint64(1), ws.ID)
				require.NotNil(t, ws.Output)
				assert.Equal(t, "DP-1", *ws.Output)
			},
		},
		{
			name: "window closed",
			line: `{"WindowClosed":{"id":7}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WindowClosed)
				assert.Equal(t, uint64(7), ev.WindowClosed.ID)
			},
		},
		{
			name: "focus cleared",
			line: `{"WindowFocusChanged":{"id":null}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WindowFocusChanged)
				assert.Nil(t, ev.WindowFocusChanged.ID)
			},
		},
		{
			name: "layouts changed pairs",
			line: `{"WindowLayoutsChanged":{"changes":[[7,{"pos_in_scrolling_layout":[2,0]}],[8,{"pos_in_scrolling_layout":null}]]}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WindowLayoutsChanged)
				require.Len(t, ev.WindowLayoutsChanged.Changes, 2)
				first := ev.WindowLayoutsChanged.Changes[0]
				assert.Equal(t, uint64(7), first.WindowID)
				require.NotNil(t, first.Layout.PosInScrollingLayout)
				assert.Equal(t, [2]int{2, 0}, *first.Layout.PosInScrollingLayout)
				assert.Nil(t, ev.WindowLayoutsChanged.Changes[1].Layout.PosInScrollingLayout)
			},
		},
		{
			name: "workspace activated",
			line: `{"WorkspaceActivated":{"id":2,"focused":true}}`,
			check: func(t *testing.T, ev *Event) {
				require.NotNil(t, ev.WorkspaceActivated)
				assert.True(t, ev.WorkspaceActivated.Focused)
			},
		},
		{
			name: "unknown event kind ignored",
			line: `{"KeyboardLayoutsChanged":{"keyboard_layouts":{}}}`,
			check: func(t *testing.T, ev *Event) {
				assert.Equal(t, "ignored", ev.Name())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(tc.line), &ev))
			tc.check(t, &ev)
		})
	}
}

func TestLayoutChangeRoundTrip(t *testing.T) {
	pos := [2]int{1, 3}
	in := LayoutChange{WindowID: 42, Layout: models.WindowLayout{PosInScrollingLayout: &pos}}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out LayoutChange
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestLayoutChangeRejectsBadPair(t *testing.T) {
	var change LayoutChange
	assert.Error(t, json.Unmarshal([]byte(`[42]`), &change))
	assert.Error(t, json.Unmarshal([]byte(`{"id":42}`), &change))
}
