package niri

import (
	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/models"
)

// snapshotBuffer sizes the snapshot channel. Event production is bounded by
// user interaction, so this never fills in practice; it only decouples the
// socket reader from slow consumers.
const snapshotBuffer = 256

// Stream reads the niri event stream on a dedicated goroutine and produces
// window snapshots. It runs for the lifetime of the process; a socket read
// error terminates the stream permanently and closes the channel.
type Stream struct {
	snapshots chan models.Snapshot
	logger    *logrus.Entry
}

// newStream starts the reader goroutine on the given socket. The socket has
// already been switched into event-stream mode.
func newStream(socket *Socket) *Stream {
	s := &Stream{
		snapshots: make(chan models.Snapshot, snapshotBuffer),
		logger:    logging.NewLogger("niri-stream"),
	}
	go s.run(socket)
	return s
}

// Snapshots returns the channel of window snapshots. The channel is closed
// when the event stream ends.
func (s *Stream) Snapshots() <-chan models.Snapshot {
	return s.snapshots
}

func (s *Stream) run(socket *Socket) {
	defer close(s.snapshots)
	defer socket.Close()

	set := NewWindowSet()
	for {
		event, err := socket.ReadEvent()
		if err != nil {
			// Compositor disconnects surface here; there is no reconnect.
			s.logger.WithError(err).Error("event stream terminated")
			return
		}
		if snapshot := set.Apply(event); snapshot != nil {
			s.snapshots <- *snapshot
		}
	}
}
