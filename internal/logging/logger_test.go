package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		development   bool
		expectedLevel zapcore.Level
		expectError   bool
	}{
		{name: "production default", expectedLevel: zapcore.InfoLevel},
		{name: "development default", development: true, expectedLevel: zapcore.DebugLevel},
		{name: "production debug", level: "debug", expectedLevel: zapcore.DebugLevel},
		{name: "production warn", level: "warn", expectedLevel: zapcore.WarnLevel},
		{name: "development error", level: "error", development: true, expectedLevel: zapcore.ErrorLevel},
		{name: "invalid level", level: "chatty", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.development)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.expectedLevel))
			if tt.expectedLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.expectedLevel-1))
			}
		})
	}
}
