package logging

import (
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
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"debug", zapcore.DebugLevel},
		{" trace ", zapcore.Level(-2)},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestNewHonoursVerbosity(t *testing.T) {
	log, err := New(Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Enabled())
	assert.False(t, log.V(DEBUG).Enabled())

	log, err = New(Options{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.V(DEBUG).Enabled())
	assert.False(t, log.V(TRACE).Enabled())

	_, err = New(Options{Level: "nope"})
	assert.Error(t, err)
}
