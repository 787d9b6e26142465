package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLoggerWithFile_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := NewLoggerWithFile("info", path)
	require.NoError(t, err)

	l.With("run_id", "abc").Info("collected page", "count", 3)
	l.Debug("hidden below info")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"msg":"collected page"`)
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"count":3`)
	assert.False(t, strings.Contains(out, "hidden below info"))
}

func TestNewLoggerWithFile_BadPathStillLogs(t *testing.T) {
	l, err := NewLoggerWithFile("info", filepath.Join(t.TempDir(), "missing", "run.log"))
	assert.Error(t, err)
	require.NotNil(t, l)
	l.Info("still usable")
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("discarded")
	l.With("k", "v").Warn("discarded")
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("warn")
	require.NotNil(t, l)
	assert.Equal(t, zapcore.WarnLevel, l.level.Level())
	l.Info("below warn")
}

func TestSetLevel_AppliesToChildren(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := NewLoggerWithFile("info", path)
	require.NoError(t, err)

	child := l.With("cmd", "collector")
	child.Debug("dropped at info")

	l.SetLevel("debug")
	child.Debug("kept at debug")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "dropped at info")
	assert.Contains(t, out, `"msg":"kept at debug"`)
}
