package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{3, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestShouldLogTrace(t *testing.T) {
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
	assert.True(t, ShouldLogTrace(VerbosityTrace+1))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Info (-v)", LevelName(1))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv)", LevelName(3))
}

func TestInitialize(t *testing.T) {
	err := Initialize(false, VerbosityDebug)
	assert.NoError(t, err)
	assert.NotNil(t, Logger)
	assert.False(t, JSONOutput)

	err = Initialize(true, VerbosityUser)
	assert.NoError(t, err)
	assert.True(t, JSONOutput)

	Cleanup()
}
