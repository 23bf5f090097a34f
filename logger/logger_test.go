package logger

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
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "INFO", want: zapcore.InfoLevel},
		{in: "warn", want: zapcore.WarnLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl)
		})
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestInitUsesEnvironment(t *testing.T) {
	t.Setenv("IRC_LOG_LEVEL", "error")
	require.NoError(t, Init("debug"))
	assert.False(t, Log.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, Log.Core().Enabled(zapcore.ErrorLevel))
}
