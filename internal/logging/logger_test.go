package logging

import (
	"testing"

	"github.com/mikey/linkedin-prioritizer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestReload(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.format", "console")
	cfg := config.NewFromViper(v)

	logger, err := InitLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, Level.Level())
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	v.Set("logging.level", "debug")
	Reload(cfg, zaptest.NewLogger(t))
	assert.Equal(t, zapcore.DebugLevel, Level.Level())
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "existing loggers follow the shared level")

	Level.SetLevel(zapcore.InfoLevel)
}
