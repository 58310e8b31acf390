package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitLoggerWithConfig(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	assert.NoError(t, InitLoggerWithConfig("debug", true))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))

	assert.NoError(t, InitLoggerWithConfig("warn", false))
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, InitLoggerWithConfig("shout", false))
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("plain")
	FromContext(WithCorrelationID(context.Background(), "abc-123"), base).Info("tagged")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "abc-123", entries[1].ContextMap()["correlation_id"])
	assert.Equal(t, "abc-123", CorrelationIDFromContext(WithCorrelationID(context.Background(), "abc-123")))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}
