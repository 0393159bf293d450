package taskbar

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niritools/taskbar/config"
	"github.com/niritools/taskbar/internal/niri"
)

func testServer(t *testing.T, cfg *config.Config) (*httptest.Server, *Engine) {
	t.Helper()

	st := NewStore()
	engine := NewEngine(st, cfg)
	ts := httptest.NewServer(NewServer(engine).Handler())
	t.Cleanup(ts.Close)
	return ts, engine
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestServerHealth(t *testing.T) {
	ts, _ := testServer(t, config.Default())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerGetState(t *testing.T) {
	ts, engine := testServer(t, config.Default())
	engine.Store().ApplySnapshot(snapshotOf(snapshotWindow(1, false), snapshotWindow(2, true)))
	engine.Store().MarkUrgent([]uint64{1})

	var state State
	getJSON(t, ts.URL+"/api/state", &state)

	require.NotNil(t, state.Snapshot)
	assert.Len(t, state.Snapshot.Windows, 2)
	assert.Equal(t, []uint64{1}, state.UrgentIDs)
}

func TestServerGetConfig(t *testing.T) {
	cfg := &config.Config{
		Apps: map[string][]config.AppRule{
			"firefox": {{Match: "Incognito", Class: "private"}},
		},
	}
	require.NoError(t, cfg.Validate())

	ts, _ := testServer(t, cfg)

	var got config.Config
	getJSON(t, ts.URL+"/api/config", &got)
	require.Contains(t, got.Apps, "firefox")
	assert.Equal(t, "private", got.Apps["firefox"][0].Class)
}

func TestServerActivateWindow(t *testing.T) {
	t.Setenv(niri.SocketEnv, fakeNiri(t, `{"Ok":"Handled"}`))

	ts, _ := testServer(t, config.Default())

	resp, err := http.Post(ts.URL+"/api/windows/7/activate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]uint64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint64(7), body["activated"])
}

func TestServerActivateWindowCompositorError(t *testing.T) {
	t.Setenv(niri.SocketEnv, fakeNiri(t, `{"Err":"no such window"}`))

	ts, _ := testServer(t, config.Default())

	resp, err := http.Post(ts.URL+"/api/windows/7/activate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServerActivateWindowBadID(t *testing.T) {
	ts, _ := testServer(t, config.Default())

	resp, err := http.Post(ts.URL+"/api/windows/seven/activate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerStream(t *testing.T) {
	ts, engine := testServer(t, config.Default())
	engine.Store().ApplySnapshot(snapshotOf(snapshotWindow(1, false)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)

	// The current state arrives first.
	require.True(t, scanner.Scan())
	var initial Update
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &initial))
	assert.Equal(t, UpdateSnapshot, initial.Type)
	require.NotNil(t, initial.Snapshot)
	assert.Equal(t, uint64(1), initial.Snapshot.Windows[0].ID)

	// Broadcasts follow, one JSON line each. The handler may still be
	// subscribing, so retry until the update lands.
	go func() {
		for i := 0; i < 20; i++ {
			engine.Store().MarkUrgent([]uint64{1})
			engine.Store().ApplySnapshot(snapshotOf(snapshotWindow(1, false)))
			time.Sleep(10 * time.Millisecond)
		}
	}()

	require.True(t, scanner.Scan())
	var next Update
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &next))
	assert.Contains(t, []UpdateType{UpdateUrgency, UpdateSnapshot}, next.Type)
}

// fakeNiri accepts one connection, reads the request line, replies, then
// writes the given event lines.
func fakeNiri(t *testing.T, reply string, events ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "niri.sock")
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadBytes('\n'); err != nil {
			return
		}
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			return
		}
		for _, event := range events {
			if _, err := conn.Write([]byte(event + "\n")); err != nil {
				return
			}
		}
	}()

	return path
}
