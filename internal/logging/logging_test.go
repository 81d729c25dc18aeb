package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		format  string
		enabled zapcore.Level
		wantErr string
	}{
		{"ConsoleInfo", "info", "console", zapcore.InfoLevel, ""},
		{"JSONDebug", "debug", "json", zapcore.DebugLevel, ""},
		{"DefaultFormat", "warn", "", zapcore.WarnLevel, ""},
		{"BadLevel", "loud", "json", 0, "parsing log level"},
		{"BadFormat", "info", "xml", 0, `unknown log format "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tt.level, tt.format)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.enabled-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, OrNop(nil))
}
