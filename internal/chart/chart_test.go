package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winrate/internal/config"
	"winrate/internal/stats"
	"winrate/pkg/model"
)

func analysis() *stats.Analysis {
	at := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02 15:04", s)
		return t
	}
	trades := []model.Trade{
		{Asset: "EUR/USD", OpenTime: at("2024-01-01 10:00"), Profit: 20, Currency: "USD"},
		{Asset: "EUR/USD", OpenTime: at("2024-01-01 11:00"), Profit: -10, Currency: "USD"},
		{Asset: "GBP/USD", OpenTime: at("2024-01-02 12:00"), Profit: -10, Currency: "USD"},
		{Asset: "AUD/CAD", OpenTime: at("2024-01-08 12:00"), Profit: 15, Currency: "USD"},
	}
	return stats.Analyze(trades, 500, 10)
}

func TestBuilder_Render(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())
	var buf bytes.Buffer

	require.NoError(t, b.Render(&buf, analysis()))

	html := buf.String()
	for _, title := range []string{
		"Win rate by day",
		"Rolling win rate",
		"assets by win rate",
		"Wins vs losses",
		"Win rate by hour of day",
		"Weekly win rate",
		"Balance (USD)",
		"Cumulative profit (USD)",
		"Profit by day (USD)",
	} {
		assert.Contains(t, html, title)
	}
	assert.Contains(t, html, "#00ff88")
	assert.Contains(t, html, "#ff4444")
}

func TestBuilder_TopAssetsLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.TopAssetsCount = 2
	b := NewBuilder(cfg)

	bar := b.TopAssets(analysis())
	require.Len(t, bar.MultiSeries, 1)

	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 2)
	// best asset ends up last so it is drawn on top
	assert.Equal(t, 100.0, data[1].Value)
	assert.Equal(t, "#00ff88", data[1].ItemStyle.Color)
}

func TestBuilder_HourOfDayGaps(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())

	bar := b.HourOfDay(analysis())
	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 24)
	assert.Equal(t, "-", data[3].Value)
	assert.Equal(t, 100.0, data[10].Value)
	assert.Equal(t, 0.0, data[11].Value)
	assert.Equal(t, "#ff4444", data[11].ItemStyle.Color)
}

func TestBuilder_Save(t *testing.T) {
	b := NewBuilder(config.DefaultConfig())
	dir := filepath.Join(t.TempDir(), "outputs")

	path, err := b.Save(dir, "2024-01-03_09-30-15", analysis())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-01-03_09-30-15 charts.html"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGridColor(t *testing.T) {
	assert.Equal(t, "rgba(255,255,255,0.5)", gridColor(0.5))
	assert.Equal(t, "1400px", px(1400))
	assert.Equal(t, "100px", px(10))
}
