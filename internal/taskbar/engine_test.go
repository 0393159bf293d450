package taskbar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niritools/taskbar/config"
	"github.com/niritools/taskbar/errors"
	"github.com/niritools/taskbar/internal/niri"
	"github.com/niritools/taskbar/pkg/models"
)

func notifyingConfig() *config.Config {
	cfg := config.Default()
	cfg.Notifications.Enabled = true
	return cfg
}

func waitUpdate(t *testing.T, ch chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func startEngine(t *testing.T) (*Engine, chan models.Snapshot, chan models.EnrichedNotification, chan error, context.CancelFunc) {
	t.Helper()

	st := NewStore()
	engine := NewEngine(st, notifyingConfig())

	snapshots := make(chan models.Snapshot)
	notifications := make(chan models.EnrichedNotification)
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		done <- engine.Run(ctx, snapshots, notifications)
	}()
	t.Cleanup(cancel)

	return engine, snapshots, notifications, done, cancel
}

func TestEngineAppliesSnapshots(t *testing.T) {
	engine, snapshots, _, _, _ := startEngine(t)
	sub := engine.Store().Subscribe()
	defer engine.Store().Unsubscribe(sub)

	snapshots <- snapshotOf(snapshotWindow(1, true))

	u := waitUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, u.Type)
	require.NotNil(t, u.Snapshot)
	assert.Equal(t, uint64(1), u.Snapshot.Windows[0].ID)
}

func TestEngineCorrelatesNotification(t *testing.T) {
	engine, snapshots, notifications, _, _ := startEngine(t)
	sub := engine.Store().Subscribe()
	defer engine.Store().Unsubscribe(sub)

	// The window's pid matches the notification sender directly, so no real
	// process tree is consulted for the match itself.
	pid := int32(424242)
	window := snapshotWindow(7, false)
	window.PID = &pid
	snapshots <- snapshotOf(window)
	waitUpdate(t, sub)

	sender := int64(424242)
	notifications <- models.EnrichedNotification{
		Notification: models.Notification{AppName: "test"},
		SenderPID:    &sender,
	}

	u := waitUpdate(t, sub)
	assert.Equal(t, UpdateUrgency, u.Type)
	assert.Equal(t, []uint64{7}, u.UrgentIDs)
}

func TestEngineNotificationBeforeFirstSnapshotIsDropped(t *testing.T) {
	engine, snapshots, notifications, _, _ := startEngine(t)
	sub := engine.Store().Subscribe()
	defer engine.Store().Unsubscribe(sub)

	sender := int64(424242)
	notifications <- models.EnrichedNotification{
		Notification: models.Notification{AppName: "test"},
		SenderPID:    &sender,
	}

	// The next snapshot still flows through, proving the notification was
	// consumed without effect.
	snapshots <- snapshotOf(snapshotWindow(1, false))
	u := waitUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, u.Type)
	assert.Empty(t, u.UrgentIDs)
}

func TestEngineStreamCloseStops(t *testing.T) {
	_, snapshots, _, done, _ := startEngine(t)

	close(snapshots)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeStreamClosed))
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on stream close")
	}
}

func TestEngineContextCancelStops(t *testing.T) {
	_, _, _, done, cancel := startEngine(t)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}

func TestEngineStartWithoutSessionBus(t *testing.T) {
	t.Setenv(niri.SocketEnv, fakeNiri(t, `{"Ok":"Handled"}`,
		`{"WorkspacesChanged":{"workspaces":[{"id":1,"idx":0,"output":"DP-1","is_active":true,"is_focused":true}]}}`,
		`{"WindowsChanged":{"windows":[{"id":10,"app_id":"foot","pid":500,"workspace_id":1,"is_focused":true,"layout":{}}]}}`,
	))
	// Nothing listens here; the session bus connect fails immediately.
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/bus")

	st := NewStore()
	engine := NewEngine(st, notifyingConfig())
	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Start(ctx) }()

	// Window state flows even though notification monitoring is down.
	u := waitUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, u.Type)
	require.NotNil(t, u.Snapshot)
	assert.Equal(t, uint64(10), u.Snapshot.Windows[0].ID)

	// The fake compositor hangs up after its events; the engine stops on
	// the closed stream, not on the bus failure.
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, errors.ErrCodeStreamClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after the compositor hung up")
	}
}

func TestEngineSetConfigBroadcastsReload(t *testing.T) {
	st := NewStore()
	engine := NewEngine(st, notifyingConfig())

	sub := st.Subscribe()
	defer st.Unsubscribe(sub)

	next := config.Default()
	next.Notifications.Fuzzy = true
	engine.SetConfig(next)

	u := waitUpdate(t, sub)
	assert.Equal(t, UpdateConfigReload, u.Type)
	assert.True(t, engine.Config().Notifications.Fuzzy)
}
