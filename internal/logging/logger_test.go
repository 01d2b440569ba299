package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, level(Options{}))
	assert.Equal(t, zapcore.DebugLevel, level(Options{Verbose: true}))
	assert.Equal(t, zapcore.WarnLevel, level(Options{Quiet: true}))
	assert.Equal(t, zapcore.DebugLevel, level(Options{Verbose: true, Quiet: true}))
}

func TestNew_ReplacesGlobal(t *testing.T) {
	logger, err := New(Options{Verbose: true})
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	assert.Same(t, logger, zap.L())
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
