// Package notify captures desktop notifications off the session bus and
// correlates them with compositor windows.
package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/logging"
)

// PIDResolver resolves a bus peer name to its OS process id.
type PIDResolver interface {
	ConnectionPID(peer string) (uint32, error)
}

// NameOwnerChange is a decoded NameOwnerChanged lifecycle signal.
type NameOwnerChange struct {
	Name     string
	OldOwner string
	NewOwner string
}

// ConnectionCache maps bus peer names to process ids with a best-effort TTL.
//
// A single worker goroutine owns the map; callers and the bus lifecycle feed
// never touch it directly, so there is no lock to contend on. Get may
// suspend its caller while the worker is busy, but never blocks other
// callers.
type ConnectionCache struct {
	requests chan getRequest
	done     chan struct{}
	logger   *logrus.Entry
}

type getRequest struct {
	peer  string
	reply chan *uint32
}

type cacheEntry struct {
	pid    *uint32
	expiry time.Time
}

// NewConnectionCache starts the cache worker. The lifecycle channel carries
// peer-ownership-change signals; the sweep interval is independent of the
// TTL, so a TTL below the sweep interval just means entries linger until the
// next sweep. The worker runs until ctx is cancelled or the lifecycle
// channel closes.
func NewConnectionCache(ctx context.Context, resolver PIDResolver, lifecycle <-chan NameOwnerChange, ttl, sweep time.Duration) *ConnectionCache {
	c := &ConnectionCache{
		requests: make(chan getRequest),
		done:     make(chan struct{}),
		logger:   logging.NewLogger("connection-cache"),
	}
	go c.run(ctx, resolver, lifecycle, ttl, sweep)
	return c
}

// Get returns the cached process id for the given peer, resolving it through
// the bus on a miss. A nil result means the pid could not be determined;
// that outcome is cached too. A stopped worker answers every lookup with
// nil, it never wedges the caller.
func (c *ConnectionCache) Get(ctx context.Context, peer string) *uint32 {
	req := getRequest{peer: peer, reply: make(chan *uint32, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case pid := <-req.reply:
		return pid
	case <-c.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (c *ConnectionCache) run(ctx context.Context, resolver PIDResolver, lifecycle <-chan NameOwnerChange, ttl, sweep time.Duration) {
	defer close(c.done)

	entries := make(map[string]cacheEntry)

	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-c.requests:
			if entry, ok := entries[req.peer]; ok {
				// Hit: every successful lookup refreshes the expiry.
				entry.expiry = time.Now().Add(ttl)
				entries[req.peer] = entry
				req.reply <- entry.pid
				continue
			}
			pid := c.resolve(resolver, req.peer)
			entries[req.peer] = cacheEntry{pid: pid, expiry: time.Now().Add(ttl)}
			req.reply <- pid

		case change, ok := <-lifecycle:
			if !ok {
				c.logger.Warn("bus lifecycle stream closed; cache worker exiting")
				return
			}
			if change.NewOwner != "" {
				// A peer gained an owner: resolve eagerly so later
				// notifications from it hit the cache.
				pid := c.resolve(resolver, change.NewOwner)
				entries[change.NewOwner] = cacheEntry{pid: pid, expiry: time.Now().Add(ttl)}
			} else if change.OldOwner != "" {
				delete(entries, change.OldOwner)
			}

		case <-ticker.C:
			now := time.Now()
			for peer, entry := range entries {
				if !entry.expiry.After(now) {
					delete(entries, peer)
				}
			}
		}
	}
}

func (c *ConnectionCache) resolve(resolver PIDResolver, peer string) *uint32 {
	pid, err := resolver.ConnectionPID(peer)
	if err != nil {
		// Unknown stays unknown until the entry expires; the failure is
		// cached so a chatty peer does not hammer the bus.
		c.logger.WithError(err).WithField("peer", peer).Debug("cannot resolve peer pid")
		return nil
	}
	return &pid
}
