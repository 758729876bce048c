package logger

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zapcore.WarnLevel)

	log.Info("hidden")
	log.Warn("Record count does not match header", zap.Int("records", 3))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "warn")
	assert.Contains(t, out, "Record count does not match header")
	assert.Contains(t, out, `"records": 3`)
}

func TestLevelVar(t *testing.T) {
	var level zapcore.Level
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	LevelVar(fs, &level, "log-level", zapcore.WarnLevel, "log level")
	assert.Equal(t, zapcore.WarnLevel, level)

	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))
	assert.Equal(t, zapcore.DebugLevel, level)
	assert.Equal(t, "debug", fs.Lookup("log-level").Value.String())

	err := fs.Parse([]string{"--log-level", "loud"})
	assert.Error(t, err)
}
