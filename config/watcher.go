package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/niritools/taskbar/logging"
	"github.com/niritools/taskbar/pkg/paths"
)

// Watcher watches the config directory and reloads the configuration when it
// changes. A failed reload keeps the previous configuration in effect.
type Watcher struct {
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	lastChange time.Time
	mu         sync.Mutex
	logger     *logrus.Entry
	onReload   func(*Config)
}

// NewWatcher creates a Watcher over the default config directory. The
// onReload callback receives every successfully reloaded configuration.
func NewWatcher(debounce time.Duration, onReload func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	configDir := paths.ConfigDir()
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		debounce: debounce,
		logger:   logging.NewLogger("config-watcher"),
		onReload: onReload,
	}, nil
}

// Start begins processing filesystem events. It returns immediately; the
// watcher runs until Stop is called.
func (w *Watcher) Start() {
	go w.run()
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleChange(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("config watch error")
		}
	}
}

func isConfigFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range candidateNames {
		if base == name {
			return true
		}
	}
	// Editors often write through temp files with the same extension.
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".yaml" || ext == ".yml" || ext == ".toml"
}

func (w *Watcher) handleChange(path string) {
	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastChange) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastChange = now
	w.mu.Unlock()

	// Give the writer a moment to finish before reloading.
	time.Sleep(w.debounce)

	cfg, err := LoadDefault()
	if err != nil {
		w.logger.WithError(err).WithField("file", filepath.Base(path)).
			Warn("config reload failed; keeping previous configuration")
		return
	}

	w.logger.WithField("file", filepath.Base(path)).Info("configuration reloaded")
	w.onReload(cfg)
}
