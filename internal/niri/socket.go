// Package niri talks to the niri compositor over its IPC socket and rebuilds
// a consistent window/workspace view from the event stream.
//
// The wire protocol is newline-delimited JSON over a unix stream socket: one
// request line, one reply line, and, for event-stream requests, a continuous
// sequence of event lines afterwards.
package niri

import (
	"bufio"
	"encoding/json"
	"net"
	"os"

	"github.com/niritools/taskbar/errors"
)

// SocketEnv is the environment variable niri uses to advertise its socket.
const SocketEnv = "NIRI_SOCKET"

// Socket is a single connection to the niri IPC socket.
type Socket struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Connect opens a connection to the socket advertised in the environment.
func Connect() (*Socket, error) {
	path := os.Getenv(SocketEnv)
	if path == "" {
		return nil, errors.New(errors.ErrCodeNiriSocket, "NIRI_SOCKET is not set")
	}
	return ConnectTo(path)
}

// ConnectTo opens a connection to the socket at the given path.
func ConnectTo(path string) (*Socket, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, errors.NiriSocket(err)
	}
	return &Socket{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Send writes one request line and reads the reply line. The returned raw
// message is the payload of the Ok variant; an Err reply becomes a
// NIRI_REPLY error.
func (s *Socket) Send(request interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot encode niri request")
	}
	data = append(data, '\n')
	if _, err := s.conn.Write(data); err != nil {
		return nil, errors.NiriSocket(err)
	}

	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		return nil, errors.NiriSocket(err)
	}

	var rep reply
	if err := json.Unmarshal(line, &rep); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNiriReply, "cannot decode niri reply")
	}
	if rep.Err != nil {
		return nil, errors.NiriReply(*rep.Err)
	}
	return rep.Ok, nil
}

// ReadEvent decodes the next event line from the stream. It is only
// meaningful after a successful event-stream request.
func (s *Socket) ReadEvent() (*Event, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		return nil, errors.NiriSocket(err)
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNiriReply, "cannot decode niri event")
	}
	return &ev, nil
}

// Close closes the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// reply mirrors niri's Reply type: a Result serialized as an externally
// tagged enum, {"Ok": response} or {"Err": "message"}.
type reply struct {
	Ok  json.RawMessage `json:"Ok,omitempty"`
	Err *string         `json:"Err,omitempty"`
}

// expectHandled checks that an Ok payload is the Handled response variant.
func expectHandled(raw json.RawMessage) error {
	var variant string
	if err := json.Unmarshal(raw, &variant); err == nil && variant == "Handled" {
		return nil
	}
	return errors.UnexpectedResponse("Handled", string(raw))
}
