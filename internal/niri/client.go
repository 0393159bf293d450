package niri

// Client is the top-level compositor client. The IPC protocol is stateless
// from our side (one connection per request, plus one long-lived connection
// per event stream), so the client itself carries nothing.
type Client struct{}

// NewClient creates a new Client.
func NewClient() *Client {
	return &Client{}
}

// ActivateWindow requests that the given window id should be focused.
func (c *Client) ActivateWindow(id uint64) error {
	socket, err := Connect()
	if err != nil {
		return err
	}
	defer socket.Close()

	ok, err := socket.Send(focusWindowRequest(id))
	if err != nil {
		return err
	}
	return expectHandled(ok)
}

// WindowStream subscribes to the compositor event stream and returns a
// stream of window snapshots.
func (c *Client) WindowStream() (*Stream, error) {
	socket, err := Connect()
	if err != nil {
		return nil, err
	}

	ok, err := socket.Send(eventStreamRequest)
	if err != nil {
		socket.Close()
		return nil, err
	}
	if err := expectHandled(ok); err != nil {
		socket.Close()
		return nil, err
	}

	return newStream(socket), nil
}
