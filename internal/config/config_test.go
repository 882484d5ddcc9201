package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultStringLength, cfg.StringLength)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
fail_percent: 25
seed: 42
string_length: 8
verbose: true
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.FailPercent)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 8, cfg.StringLength)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Echo)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, "fail_percent: 150\n"))
	assert.ErrorContains(t, err, "fail_percent")

	_, err = Load(writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "log_level")

	_, err = Load(writeConfig(t, "seed: [1, 2]\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
