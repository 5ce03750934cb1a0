package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(zapcore.AddSync(&buf), zapcore.InfoLevel, "json")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("batch finished", zap.Int("queries", 3))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch finished", entry["msg"])
	assert.Equal(t, float64(3), entry["queries"])
}

func TestBuild_ConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(zapcore.AddSync(&buf), zapcore.DebugLevel, "console")
	require.NoError(t, err)
	l.Debug("degenerate row")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "degenerate row")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(false, "xml")
	assert.Error(t, err)
}
