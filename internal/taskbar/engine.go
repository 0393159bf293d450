package taskbar

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/config"
	"github.com/niritools/taskbar/errors"
	"github.com/niritools/taskbar/internal/niri"
	"github.com/niritools/taskbar/internal/notify"
	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/models"
)

// Engine wires the compositor event stream and the notification monitor to
// the store. A single consumer goroutine owns all state mutation, so updates
// apply in arrival order.
type Engine struct {
	store  *Store
	client *niri.Client
	logger *logrus.Entry

	mu         sync.RWMutex
	cfg        *config.Config
	correlator *notify.Correlator
}

// NewEngine creates an Engine over the given store and configuration.
func NewEngine(st *Store, cfg *config.Config) *Engine {
	return &Engine{
		store:      st,
		client:     niri.NewClient(),
		logger:     logging.NewLogger("engine"),
		cfg:        cfg,
		correlator: notify.NewCorrelator(cfg),
	}
}

// Store returns the engine's state store.
func (e *Engine) Store() *Store {
	return e.store
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig swaps in a reloaded configuration and notifies subscribers.
// Cache lifetimes are fixed at startup; everything else takes effect on the
// next notification or config query.
func (e *Engine) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.correlator = notify.NewCorrelator(cfg)
	e.mu.Unlock()

	e.logger.Info("Configuration reloaded")
	e.store.BroadcastConfigReload()
}

// ActivateWindow asks the compositor to focus the given window.
func (e *Engine) ActivateWindow(id uint64) error {
	return e.client.ActivateWindow(id)
}

// Start connects the workers and runs the consumer loop until the context is
// canceled or the compositor stream ends.
func (e *Engine) Start(ctx context.Context) error {
	stream, err := e.client.WindowStream()
	if err != nil {
		return err
	}

	// A broken session bus only loses notification correlation; window
	// state keeps flowing.
	var notifications <-chan models.EnrichedNotification
	if e.Config().Notifications.Enabled {
		notifications, err = e.startNotifications(ctx)
		if err != nil {
			e.logger.WithError(err).Error("Notification monitoring unavailable")
			notifications = nil
		}
	} else {
		e.logger.Info("Notification correlation disabled")
	}

	return e.Run(ctx, stream.Snapshots(), notifications)
}

// startNotifications brings up the session bus workers: the name owner
// monitor feeding the connection cache actor, and the Notify monitor.
func (e *Engine) startNotifications(ctx context.Context) (<-chan models.EnrichedNotification, error) {
	lifecycle, err := notify.StartNameOwnerMonitor(ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := notify.NewBusResolver()
	if err != nil {
		return nil, err
	}

	cfg := e.Config()
	cache := notify.NewConnectionCache(ctx, resolver, lifecycle,
		cfg.Notifications.CacheTTL.Std(), cfg.Notifications.SweepInterval.Std())

	monitor, err := notify.StartMonitor(ctx, cache)
	if err != nil {
		return nil, err
	}
	return monitor.Notifications(), nil
}

// Run is the consumer loop. It keeps the last snapshot for notification
// correlation and applies every update to the store in arrival order. A nil
// notifications channel blocks forever, which disables that arm of the
// select.
func (e *Engine) Run(ctx context.Context, snapshots <-chan models.Snapshot, notifications <-chan models.EnrichedNotification) error {
	var last *models.Snapshot

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snapshot, ok := <-snapshots:
			if !ok {
				return errors.StreamClosed("compositor event")
			}
			last = &snapshot
			e.store.ApplySnapshot(snapshot)

		case n, ok := <-notifications:
			if !ok {
				e.logger.Warn("Notification monitor stopped")
				notifications = nil
				continue
			}
			ids := e.correlate(&n, last)
			if len(ids) > 0 {
				e.logger.WithFields(logrus.Fields{
					"app":     n.Notification.AppName,
					"windows": ids,
				}).Debug("Notification correlated")
				e.store.MarkUrgent(ids)
			}
		}
	}
}

func (e *Engine) correlate(n *models.EnrichedNotification, snapshot *models.Snapshot) []uint64 {
	e.mu.RLock()
	correlator := e.correlator
	e.mu.RUnlock()
	return correlator.Correlate(n, snapshot)
}
