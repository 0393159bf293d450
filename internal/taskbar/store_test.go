package taskbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niritools/taskbar/pkg/models"
)

func snapshotWindow(id uint64, focused bool) models.SnapshotWindow {
	wsID := uint64(1)
	return models.SnapshotWindow{
		Window: models.Window{
			ID:          id,
			WorkspaceID: &wsID,
			IsFocused:   focused,
		},
		Output: "eDP-1",
	}
}

func snapshotOf(windows ...models.SnapshotWindow) models.Snapshot {
	return models.Snapshot{Windows: windows}
}

func requireUpdate(t *testing.T, ch chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	default:
		t.Fatal("expected a broadcast update")
		return Update{}
	}
}

func TestStoreApplySnapshotBroadcasts(t *testing.T) {
	st := NewStore()
	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	st.ApplySnapshot(snapshotOf(snapshotWindow(1, true), snapshotWindow(2, false)))

	u := requireUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, u.Type)
	require.NotNil(t, u.Snapshot)
	assert.Len(t, u.Snapshot.Windows, 2)
	assert.Empty(t, u.UrgentIDs)

	state := st.Get()
	require.NotNil(t, state.Snapshot)
	assert.Empty(t, state.UrgentIDs)
}

func TestStoreMarkUrgent(t *testing.T) {
	st := NewStore()
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, false), snapshotWindow(2, false)))

	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	st.MarkUrgent([]uint64{2, 1})

	u := requireUpdate(t, sub)
	assert.Equal(t, UpdateUrgency, u.Type)
	assert.Equal(t, []uint64{1, 2}, u.UrgentIDs)
}

func TestStoreMarkUrgentAlreadyMarkedIsSilent(t *testing.T) {
	st := NewStore()
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, false)))
	st.MarkUrgent([]uint64{1})

	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	st.MarkUrgent([]uint64{1})
	st.MarkUrgent(nil)

	select {
	case u := <-sub:
		t.Fatalf("unexpected broadcast %v", u)
	default:
	}
}

func TestStoreFocusClearsUrgency(t *testing.T) {
	st := NewStore()
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, false), snapshotWindow(2, false)))
	st.MarkUrgent([]uint64{1, 2})

	// Window 1 gains focus; its urgency is resolved.
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, true), snapshotWindow(2, false)))

	state := st.Get()
	assert.Equal(t, []uint64{2}, state.UrgentIDs)
}

func TestStoreClosedWindowClearsUrgency(t *testing.T) {
	st := NewStore()
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, false), snapshotWindow(2, false)))
	st.MarkUrgent([]uint64{1, 2})

	st.ApplySnapshot(snapshotOf(snapshotWindow(2, false)))

	state := st.Get()
	assert.Equal(t, []uint64{2}, state.UrgentIDs)
}

func TestStoreConfigReloadBroadcast(t *testing.T) {
	st := NewStore()
	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	st.BroadcastConfigReload()

	u := requireUpdate(t, sub)
	assert.Equal(t, UpdateConfigReload, u.Type)
	assert.Nil(t, u.Snapshot)
}

func TestStoreSlowSubscriberDoesNotBlock(t *testing.T) {
	st := NewStore()
	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	// Overflow the subscription buffer; ApplySnapshot must not stall.
	for i := 0; i < 150; i++ {
		st.ApplySnapshot(snapshotOf(snapshotWindow(uint64(i), false)))
	}

	assert.Len(t, sub, 100)
}

func TestStoreUnsubscribeClosesChannel(t *testing.T) {
	st := NewStore()
	sub := st.Subscribe()
	st.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)

	// Broadcasts after unsubscribe must not panic on the closed channel.
	st.ApplySnapshot(snapshotOf(snapshotWindow(1, false)))
}
