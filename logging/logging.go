// Package logging provides pre-configured logrus loggers for the taskbar core.
//
// Every component gets its own *logrus.Entry carrying a "component" field, so
// log lines from the niri stream, the notification monitor, and the connection
// cache can be told apart in a single sink.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if env := os.Getenv("NIRI_TASKBAR_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("NIRI_TASKBAR_LOG_CALLER") == "true" {
		logger.SetReportCaller(true)
	}

	logger.SetFormatter(&TextFormatter{
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()),
	})

	// The core usually runs embedded in a bar process where stderr is
	// swallowed, so NIRI_TASKBAR_LOG_FILE adds a file sink next to stderr.
	var writers []io.Writer
	if path := os.Getenv("NIRI_TASKBAR_LOG_FILE"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err == nil {
				writers = append(writers, file)
			} else {
				logger.Warnf("Failed to open log file %s: %v", path, err)
			}
		}
	}
	writers = append(writers, os.Stderr)
	logger.SetOutput(io.MultiWriter(writers...))

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
