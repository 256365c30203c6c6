package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospect.db", cfg.Store.Path)
	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", cfg.Search.BaseURL)
	assert.Equal(t, 5, cfg.Search.MaxResultsPerSearch)
	assert.Equal(t, 100, cfg.Quota.DailyCap)
	assert.Equal(t, 70, cfg.Quota.WarnThreshold)
	assert.Equal(t, 0, cfg.Quota.ResetUTCOffsetHours)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30, cfg.Browser.TimeoutSecs)
	assert.InDelta(t, 2, cfg.Pacing.MinSecs, 0.001)
	assert.InDelta(t, 5, cfg.Pacing.MaxSecs, 0.001)
	assert.Equal(t, 5, cfg.Pacing.LongBreakEvery)
	assert.Equal(t, "output", cfg.Report.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Filter.Sizes)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/prospect
quota:
  daily_cap: 50
  reset_utc_offset_hours: -8
filter:
  sizes:
    - 51-200 employees
    - 201-500 employees
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/prospect", cfg.Store.DatabaseURL)
	assert.Equal(t, 50, cfg.Quota.DailyCap)
	assert.Equal(t, -8, cfg.Quota.ResetUTCOffsetHours)
	assert.Equal(t, []string{"51-200 employees", "201-500 employees"}, cfg.Filter.Sizes)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset keys.
	assert.Equal(t, 70, cfg.Quota.WarnThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("PROSPECT_QUOTA_DAILY_CAP", "25")
	t.Setenv("PROSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Quota.DailyCap)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
