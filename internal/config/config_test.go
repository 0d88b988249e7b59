package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Sources.MaxResults)
	assert.Equal(t, 30, cfg.Sources.RequestTimeoutSecs)
	assert.Equal(t, 1000, cfg.Sources.RequestDelayMS)
	assert.Equal(t, []string{"pubmed", "europepmc", "nih", "clinicaltrials", "scholar"}, cfg.Sources.Priority)
	assert.NotEmpty(t, cfg.Keywords.Research)
	assert.NotEmpty(t, cfg.Keywords.InVitro)
	assert.InDelta(t, 0.30, cfg.Scoring.Weights.TitleMatch, 0.001)
	assert.InDelta(t, 0.20, cfg.Scoring.Weights.FundingStage, 0.001)
	assert.InDelta(t, 0.15, cfg.Scoring.Weights.UsesInVitro, 0.001)
	assert.InDelta(t, 0.10, cfg.Scoring.Weights.LocationHub, 0.001)
	assert.InDelta(t, 0.40, cfg.Scoring.Weights.RecentPublication, 0.001)
	assert.Equal(t, 5, cfg.Scoring.RecencyWindowYears)
	assert.Contains(t, cfg.Scoring.HubLocations, "boston")
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "output", cfg.Export.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sources:
  max_results: 10
scoring:
  recency_window_years: 3
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sources.MaxResults)
	assert.Equal(t, 3, cfg.Scoring.RecencyWindowYears)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 0.40, cfg.Scoring.Weights.RecentPublication, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func validDefaults(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidateDefaultsPass(t *testing.T) {
	cfg := validDefaults(t)
	assert.NoError(t, cfg.Validate())
}

func TestValidateNegativeWeight(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Scoring.Weights.LocationHub = -0.1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location_hub must be >= 0")
}

func TestValidateZeroWeightSum(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Scoring.Weights = Weights{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive sum")
}

func TestValidateEmptyKeywordLists(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Keywords.Research = nil
	cfg.Keywords.InVitro = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords.research must not be empty")
	assert.Contains(t, err.Error(), "keywords.invitro must not be empty")
}

func TestValidateRecencyWindow(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Scoring.RecencyWindowYears = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recency_window_years")
}

func TestValidateEmptyPriority(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Sources.Priority = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources.priority")
}

func TestValidateServerPort(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestWeightsSum(t *testing.T) {
	w := Weights{TitleMatch: 0.3, FundingStage: 0.2, UsesInVitro: 0.15, LocationHub: 0.1, RecentPublication: 0.4}
	assert.InDelta(t, 1.15, w.Sum(), 0.0001)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
