package logger

import (
	"mpc-coordinator/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevelAndFormat(t *testing.T) {
	require.NoError(t, InitLogger(config.LoggerConfig{Level: "debug", Format: "json"}))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)

	require.NoError(t, InitLogger(config.LoggerConfig{Level: "warn"}))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, Log.Formatter)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(config.LoggerConfig{Level: "loud"}))
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coordinator.log")
	require.NoError(t, InitLogger(config.LoggerConfig{Level: "info", FilePath: path, MaxSize: 1}))
	t.Cleanup(func() {
		_ = Close()
		rotator = nil
		Log.SetOutput(os.Stdout)
	})

	Component("test").Info("hello rotation")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello rotation")
	assert.Contains(t, string(data), "component=test")
}
