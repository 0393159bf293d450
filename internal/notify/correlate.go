package notify

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/config"
	"github.com/niritools/taskbar/internal/proc"
	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/models"
)

// ParentLookup resolves a process id to its parent. It matches
// proc.ParentPID and is swappable for tests.
type ParentLookup func(pid int) (int, bool, error)

// Correlator maps enriched notifications to the windows that should be
// flagged urgent. The matching is explicitly heuristic: it may under- or
// over-match, and every rule failure degrades to "no match", never an error.
//
// The rules run in strict priority order, stopping at the first one that
// marks at least one window:
//
//  1. walk the sender pid's ancestry against window pids
//  2. exact desktop-entry match (through the configured app map)
//  3. fuzzy desktop-entry match, when enabled
type Correlator struct {
	cfg    *config.Config
	parent ParentLookup
	logger *logrus.Entry
}

// NewCorrelator creates a Correlator using the real /proc ancestry lookup.
func NewCorrelator(cfg *config.Config) *Correlator {
	return newCorrelator(cfg, proc.ParentPID)
}

func newCorrelator(cfg *config.Config, parent ParentLookup) *Correlator {
	return &Correlator{
		cfg:    cfg,
		parent: parent,
		logger: logging.NewLogger("correlator"),
	}
}

// Correlate returns the ids of the windows the notification belongs to, in
// snapshot order. A nil snapshot or a notification with no usable signal
// yields no matches; neither is an error.
func (c *Correlator) Correlate(notification *models.EnrichedNotification, snapshot *models.Snapshot) []uint64 {
	if snapshot == nil {
		return nil
	}

	if pid, ok := notification.PID(); ok {
		if marked := c.walkAncestry(pid, snapshot); len(marked) > 0 {
			return marked
		}
	}

	if c.cfg.Notifications.DesktopEntry {
		if entry := notification.Notification.Hints.DesktopEntry; entry != nil {
			return c.matchDesktopEntry(*entry, snapshot)
		}
	}

	return nil
}

// walkAncestry climbs from the notification's pid through its parents,
// marking every non-focused window owned by a process on the way up. The
// walk naturally terminates at the process tree root; a lookup error is
// treated as "no more ancestors".
func (c *Correlator) walkAncestry(pid int64, snapshot *models.Snapshot) []uint64 {
	byPID := make(map[int64]*models.SnapshotWindow, len(snapshot.Windows))
	for i := range snapshot.Windows {
		window := &snapshot.Windows[i]
		if window.PID != nil {
			byPID[int64(*window.PID)] = window
		}
	}

	var marked []uint64
	seen := make(map[uint64]struct{})

	current := pid
	for {
		if window, ok := byPID[current]; ok && !window.IsFocused {
			if _, dup := seen[window.ID]; !dup {
				seen[window.ID] = struct{}{}
				marked = append(marked, window.ID)
			}
		}

		parent, ok, err := c.parent(int(current))
		if err != nil {
			c.logger.WithError(err).WithField("pid", current).
				Debug("ancestry walk stopped on lookup error")
			break
		}
		if !ok {
			break
		}
		current = int64(parent)
	}

	return marked
}

// matchDesktopEntry applies the exact and fuzzy desktop-entry rules. Exact
// matches always win over fuzzy matches collected in the same pass; when
// several windows share an application id, all of them are marked.
func (c *Correlator) matchDesktopEntry(entry string, snapshot *models.Snapshot) []uint64 {
	mapped := c.cfg.MapDesktopEntry(entry)

	var exact, fuzzy []uint64
	for i := range snapshot.Windows {
		window := &snapshot.Windows[i]
		if window.AppID == nil {
			continue
		}
		appID := *window.AppID

		if appID == mapped {
			exact = append(exact, window.ID)
			continue
		}
		if c.cfg.Notifications.Fuzzy && fuzzyMatch(appID, mapped) {
			fuzzy = append(fuzzy, window.ID)
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return fuzzy
}

// fuzzyMatch reports whether an application id plausibly names the same
// application as a desktop entry: either the whole ids match
// case-insensitively, or their final dot-delimited segments do (so
// "org.example.Foo" matches entry "Foo").
func fuzzyMatch(appID, entry string) bool {
	if strings.EqualFold(appID, entry) {
		return true
	}
	return strings.EqualFold(lastSegment(appID), lastSegment(entry))
}

func lastSegment(s string) string {
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
