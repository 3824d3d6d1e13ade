package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, 10, cfg.Quiz.Generation.Step)
	assert.Equal(t, 300*time.Millisecond, cfg.Quiz.Generation.Interval)
	assert.Equal(t, 2*time.Second, cfg.Quiz.RevealDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Export.Progress.Interval)
	assert.False(t, cfg.Export.ClearOnSuccess)
	assert.Equal(t, 3*time.Second, cfg.Export.JobTTL)
	assert.Equal(t, 30*time.Minute, cfg.Quiz.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.Export.SessionTTL)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9100
redis:
  address: "localhost:6379"
export:
  clear_on_success: true
  progress:
    step: 25
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ENV", "")
	t.Setenv("QUIZ_REVEAL_DELAY", "500ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.True(t, cfg.Export.ClearOnSuccess)
	assert.Equal(t, 25, cfg.Export.Progress.Step)
	assert.Equal(t, 500*time.Millisecond, cfg.Quiz.RevealDelay)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		v := viper.New()
		setDefaults(v)
		cfg, err := fromViper(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero step", func(c *Config) { c.Export.Progress.Step = 0 }},
		{"step over 100", func(c *Config) { c.Quiz.Generation.Step = 101 }},
		{"zero interval", func(c *Config) { c.Quiz.Generation.Interval = 0 }},
		{"negative session ttl", func(c *Config) { c.Export.SessionTTL = -time.Second }},
		{"negative reveal delay", func(c *Config) { c.Quiz.RevealDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
