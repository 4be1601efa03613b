package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	level, err = ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, level)

	_, err = ParseLevel("NOISY")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "OFF", LevelOff.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "TRACE", LevelTrace.String())
}

func TestLoggerLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelInfo, &buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("shown")
	assert.Contains(t, buf.String(), "INFO :")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l.Errorf("count: %d", 3)
	assert.Contains(t, buf.String(), "ERROR:")
	assert.Contains(t, buf.String(), "count: 3")
}

func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelOff, &buf)
	l.Error("nothing")
	l.Info("nothing")
	l.Trace("nothing")
	assert.Empty(t, buf.String())
}
