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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Run.LookbackDays)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.Equal(t, 59.0, cfg.Scoring.BaselineSpanDays)
	assert.Equal(t, 3.0, cfg.Scoring.MaxBaseline)
	assert.Equal(t, 1, cfg.Scoring.MinRecent)
	assert.Equal(t, 3, cfg.Scoring.EvidenceCapacity)
	assert.Equal(t, 24*time.Hour, cfg.Directory.CacheTTL)
	assert.Equal(t, "0 0 13 * * *", cfg.Schedule.ScanCron)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
run:
  now: "2024-06-30T12:00:00Z"
  workers: 8
sources:
  subreddits: [pennystocks, smallstreetbets]
  files: [data/units.jsonl]
scoring:
  max_baseline: 1.5
  min_recent: 3
  max_total: 120
  min_momentum_ratio: 1.8
exclusions:
  include_etfs: true
directory:
  cache_ttl: 6h
`)
	t.Setenv("SCAN_CRON", "0 30 9 * * 1-5")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SCOUT_HTTP_BASE_URL", "http://export.local")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8, cfg.Run.Workers)
	assert.Equal(t, []string{"pennystocks", "smallstreetbets"}, cfg.Sources.Subreddits)
	assert.Equal(t, 1.5, cfg.Scoring.MaxBaseline)
	assert.Equal(t, 3, cfg.Scoring.MinRecent)
	assert.Equal(t, 120, cfg.Scoring.MaxTotal)
	assert.True(t, cfg.Exclusions.IncludeETFs)
	assert.Equal(t, 6*time.Hour, cfg.Directory.CacheTTL)
	assert.Equal(t, "0 30 9 * * 1-5", cfg.Schedule.ScanCron)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://export.local", cfg.Sources.HTTP.BaseURL)

	now, ok, err := cfg.FixedNow()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC), now)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "run: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load(writeConfig(t, "sources:\n  files: [units.jsonl]\n"))
		require.NoError(t, err)
		return cfg
	}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, base(t).Validate())
	})
	t.Run("no sources", func(t *testing.T) {
		cfg := base(t)
		cfg.Sources.Files = nil
		assert.ErrorContains(t, cfg.Validate(), "sources")
	})
	t.Run("bad now", func(t *testing.T) {
		cfg := base(t)
		cfg.Run.Now = "yesterday"
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidNow)
	})
	t.Run("field constraint", func(t *testing.T) {
		cfg := base(t)
		cfg.Log.Format = "xml"
		assert.ErrorContains(t, cfg.Validate(), "Config.Log.Format must be one of: json, console")
	})
	t.Run("half telegram", func(t *testing.T) {
		cfg := base(t)
		cfg.Telegram.BotToken = "token"
		assert.ErrorContains(t, cfg.Validate(), "telegram")
	})
}
