package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		verbose bool
		env     string
		want    zapcore.Level
	}{
		{false, "", zapcore.WarnLevel},
		{true, "", zapcore.DebugLevel},
		{true, "error", zapcore.ErrorLevel},
		{false, " info ", zapcore.InfoLevel},
	}
	for _, c := range cases {
		got, err := Level(c.verbose, c.env)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "verbose=%v env=%q", c.verbose, c.env)
	}

	_, err := Level(false, "loud")
	assert.Error(t, err)
}

func TestNewHonoursEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	log, err := New(Options{JSON: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	t.Setenv(EnvLevel, "")
	log, err = New(Options{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
