// Package taskbar hosts the daemon core: the state store, the engine that
// feeds it from the compositor and the session bus, and the HTTP surface the
// rendering layer consumes.
package taskbar

import (
	"sort"
	"sync"

	"github.com/niritools/taskbar/pkg/models"
)

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateSnapshot     UpdateType = "snapshot"
	UpdateUrgency      UpdateType = "urgency"
	UpdateConfigReload UpdateType = "config_reload"
)

// Update is one broadcast state change. Snapshot updates carry the new
// snapshot plus the urgent set so subscribers never have to merge; urgency
// updates carry only the urgent set.
type Update struct {
	Type      UpdateType       `json:"type"`
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	UrgentIDs []uint64         `json:"urgent_ids,omitempty"`
}

// State is the complete world view served to the rendering layer.
type State struct {
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	UrgentIDs []uint64         `json:"urgent_ids"`
}

// Store is the in-memory state store for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	snapshot    *models.Snapshot
	urgent      map[uint64]struct{}
	subscribers map[chan Update]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		urgent:      make(map[uint64]struct{}),
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns the current state. The snapshot pointer is shared; snapshots
// are immutable once applied.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Snapshot:  s.snapshot,
		UrgentIDs: s.urgentIDs(),
	}
}

// ApplySnapshot stores a new window snapshot and notifies subscribers.
// Urgency is cleared for windows the snapshot shows focused and for windows
// that no longer exist.
func (s *Store) ApplySnapshot(snapshot models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = &snapshot

	keep := make(map[uint64]struct{}, len(snapshot.Windows))
	for _, w := range snapshot.Windows {
		if !w.IsFocused {
			keep[w.ID] = struct{}{}
		}
	}
	for id := range s.urgent {
		if _, ok := keep[id]; !ok {
			delete(s.urgent, id)
		}
	}

	s.broadcast(Update{
		Type:      UpdateSnapshot,
		Snapshot:  s.snapshot,
		UrgentIDs: s.urgentIDs(),
	})
}

// MarkUrgent adds the given window ids to the urgent set and notifies
// subscribers. Ids already marked do not trigger a broadcast.
func (s *Store) MarkUrgent(ids []uint64) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		if _, ok := s.urgent[id]; !ok {
			s.urgent[id] = struct{}{}
			changed = true
		}
	}
	if !changed {
		return
	}

	s.broadcast(Update{
		Type:      UpdateUrgency,
		UrgentIDs: s.urgentIDs(),
	})
}

// BroadcastConfigReload notifies subscribers that the active configuration
// changed and they should refetch it.
func (s *Store) BroadcastConfigReload() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcast(Update{Type: UpdateConfigReload})
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
	close(ch)
}

// broadcast must be called with at least a read lock held. Sends are
// non-blocking so slow clients cannot stall the daemon.
func (s *Store) broadcast(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

// urgentIDs must be called with at least a read lock held.
func (s *Store) urgentIDs() []uint64 {
	ids := make([]uint64, 0, len(s.urgent))
	for id := range s.urgent {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
