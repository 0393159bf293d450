// Package client is the rendering-layer client for the taskbar daemon. It
// talks to the daemon's HTTP API over its unix socket.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/niritools/taskbar/pkg/models"
	"github.com/niritools/taskbar/pkg/paths"
)

// State is the daemon's world view: the current window snapshot plus the set
// of windows with unresolved notifications.
type State struct {
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	UrgentIDs []uint64         `json:"urgent_ids"`
}

// Update is one message on the daemon's update stream.
type Update struct {
	Type      string           `json:"type"`
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	UrgentIDs []uint64         `json:"urgent_ids,omitempty"`
}

// Update types produced by the daemon.
const (
	UpdateSnapshot     = "snapshot"
	UpdateUrgency      = "urgency"
	UpdateConfigReload = "config_reload"
)

// baseURL is the dummy host used for unix socket HTTP requests.
// The actual connection goes through the socket, not this URL.
const baseURL = "http://unix"

// Client calls the daemon's HTTP API over a unix socket.
type Client struct {
	httpClient *http.Client
	socketPath string
}

// New creates a Client connected to the default daemon socket.
func New() *Client {
	return NewWithSocket(paths.SocketPath())
}

// NewWithSocket creates a Client connected to the daemon socket at the given
// path.
func NewWithSocket(socketPath string) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
		},
		socketPath: socketPath,
	}
}

// State returns the daemon's current state.
func (c *Client) State(ctx context.Context) (*State, error) {
	var state State
	if err := c.getJSON(ctx, "/api/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Config returns the daemon's active configuration as raw JSON. The rendering
// layer decodes the parts it understands, such as the app class rules.
func (c *Client) Config(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/api/config", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ActivateWindow asks the daemon to focus the given window.
func (c *Client) ActivateWindow(ctx context.Context, id uint64) error {
	url := fmt.Sprintf("%s/api/windows/%d/activate", baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	return nil
}

// IsRunning returns true if the daemon is available and responding.
func (c *Client) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// StreamUpdates subscribes to the daemon's NDJSON update stream. The returned
// channel is closed when the context is canceled or the connection is lost.
func (c *Client) StreamUpdates(ctx context.Context) (<-chan Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// A dedicated client with no timeout; the stream stays open.
	streamTransport := &http.Transport{
		DialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
	}
	streamClient := &http.Client{Transport: streamTransport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	ch := make(chan Update, 10)

	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		// Snapshot lines grow with the window count and title lengths;
		// the default 64KB line limit is too small.
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var update Update
			if err := json.Unmarshal(line, &update); err != nil {
				continue
			}

			select {
			case ch <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
