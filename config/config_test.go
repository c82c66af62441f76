package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 45, cfg.Thresholds().BeginMinutes)
	assert.Equal(t, 60, cfg.Thresholds().EndMinutes)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
engine:
  significant_begin_minutes: 30
  workers: 2
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.GetReadTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetWriteTimeout())
	assert.Equal(t, 30, cfg.Thresholds().BeginMinutes)
	assert.Equal(t, 60, cfg.Thresholds().EndMinutes)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, "----", cfg.Engine.OffCode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("MIRROR_PORT", "7000")
		t.Setenv("MIRROR_DB", ":memory:")
		t.Setenv("MIRROR_LOG_LEVEL", "warn")

		cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("MIRROR_PORT", "eighty")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":          "server: [",
		"port out of range": "server:\n  port: 70000\n",
		"empty off code":    "engine:\n  off_code: \"\"\n",
		"negative workers":  "engine:\n  workers: -1\n",
		"bad timeout":       "server:\n  idle_timeout: soon\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
