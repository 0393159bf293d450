package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{DisableColors: true, DisableTimestamp: true}

	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "stream closed",
		Data: logrus.Fields{
			"component": "niri-stream",
			"err":       "EOF",
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[WARN] [niri-stream] stream closed err=EOF\n", string(out))
}

func TestTextFormatterStableFieldOrder(t *testing.T) {
	f := &TextFormatter{DisableColors: true, DisableTimestamp: true}

	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "msg",
		Data: logrus.Fields{
			"zebra": 1,
			"alpha": 2,
		},
	}

	first, err := f.Format(entry)
	require.NoError(t, err)
	second, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), "alpha=2 zebra=1")
}

func TestNewLoggerSingleton(t *testing.T) {
	a := NewLogger("test-component")
	b := NewLogger("test-component")
	assert.Same(t, a, b)
}
