package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 10, cfg.Analysis.RollingWindowPercent)
	assert.Equal(t, 5*time.Minute, cfg.Rates.CacheTTL)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
analysis_settings:
  rolling_window_percent: 20
  top_assets_count: 3
  max_files_to_show: 7
colors:
  win: "#112233"
rates:
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Analysis.RollingWindowPercent)
	assert.Equal(t, 3, cfg.Analysis.TopAssetsCount)
	assert.Equal(t, 7, cfg.Analysis.MaxFilesToShow)
	assert.Equal(t, "#112233", cfg.Colors.Win)
	assert.Equal(t, "#ff4444", cfg.Colors.Loss, "untouched keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Rates.Timeout)
}

func TestLoad_LegacyINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer_config.ini")
	content := `[graph_settings]
figure_width = 16
font_size = 12

[colors]
loss = #aa0000

[analysis_settings]
rolling_window_percent = 25
top_assets_count = 4
max_files_to_show = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Graph.FigureWidth)
	assert.Equal(t, 9, cfg.Graph.FigureHeight)
	assert.Equal(t, 12, cfg.Graph.FontSize)
	assert.Equal(t, "#aa0000", cfg.Colors.Loss)
	assert.Equal(t, 25, cfg.Analysis.RollingWindowPercent)
	assert.Equal(t, 4, cfg.Analysis.TopAssetsCount)
	assert.Equal(t, 2, cfg.Analysis.MaxFilesToShow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WINRATE_RATES_URL", "http://localhost:9999/v4")
	t.Setenv("WINRATE_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v4", cfg.Rates.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero rolling window", mutate: func(c *Config) { c.Analysis.RollingWindowPercent = 0 }, wantErr: true},
		{name: "rolling window above 100", mutate: func(c *Config) { c.Analysis.RollingWindowPercent = 150 }, wantErr: true},
		{name: "bad colour", mutate: func(c *Config) { c.Colors.Win = "green" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "no trades dir", mutate: func(c *Config) { c.Paths.TradesDir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
