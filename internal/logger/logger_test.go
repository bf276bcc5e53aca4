package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/rustyeddy/tradejournal/config"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			log, err := New(config.LogConfig{Level: tt.level, Encoding: "json"})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewEncodings(t *testing.T) {
	t.Parallel()

	for _, enc := range []string{"", "console", "json"} {
		log, err := New(config.LogConfig{Encoding: enc, Development: true})
		require.NoError(t, err, enc)
		assert.NotNil(t, log)
	}

	_, err := New(config.LogConfig{Encoding: "xml"})
	assert.Error(t, err)
}

func TestEncoderConfigTimeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 22, 14, 30, 0, 0, time.UTC)
	for _, enc := range []string{"console", "json"} {
		ec := encoderConfig(enc)
		var e zapcore.Encoder
		if enc == "console" {
			e = zapcore.NewConsoleEncoder(ec)
		} else {
			e = zapcore.NewJSONEncoder(ec)
		}
		buf, err := e.EncodeEntry(zapcore.Entry{Time: at, Level: zapcore.InfoLevel, Message: "hello"}, nil)
		require.NoError(t, err, enc)
		assert.Contains(t, buf.String(), "2026-01-22T14:30:00.000Z", enc)
		buf.Free()
	}
}
