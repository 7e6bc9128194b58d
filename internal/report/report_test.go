package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"winrate/internal/stats"
	"winrate/pkg/model"
)

func init() {
	color.NoColor = true
}

func fixture() ([]model.Trade, *stats.Analysis, Run) {
	at := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02 15:04", s)
		return t
	}
	trades := []model.Trade{
		{Asset: "EUR/USD", OpenTime: at("2024-01-01 10:00"), Profit: 20, Stake: 25, Currency: "USD", ExpirationSec: 60, Source: "trades/a.xlsx"},
		{Asset: "EUR/USD", OpenTime: at("2024-01-01 11:00"), Profit: -10, Stake: 10, Currency: "USD", ExpirationSec: 60, Source: "trades/a.xlsx"},
		{Asset: "BTC/USD OTC", OpenTime: at("2024-01-02 12:00"), Profit: 20, Stake: 25, Currency: "USD", ExpirationSec: 60, Source: "trades/b.xlsx"},
	}
	run := Run{
		Files:       []string{"trades/a.xlsx", "trades/b.xlsx"},
		OTC:         "all assets",
		Currency:    "USD",
		GeneratedAt: time.Date(2024, 1, 3, 9, 30, 15, 0, time.UTC),
	}
	return trades, stats.Analyze(trades, 1000, 10), run
}

func TestColorHelpers(t *testing.T) {
	assert.Equal(t, "60.00%", ColorWinRate(60))
	assert.Equal(t, "+150.50", ColorProfit(150.5))
	assert.Equal(t, "-3.00", ColorProfit(-3))
	assert.Equal(t, "0.00", ColorProfit(-0.001))
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "1.50", formatRatio(1.5))
	assert.Equal(t, "∞", formatRatio(stats.Ratio(math.Inf(1))))
}

func TestConsole_PrintAll(t *testing.T) {
	_, a, run := fixture()
	var out bytes.Buffer

	NewConsole(&out).PrintAll(a, run)

	s := out.String()
	for _, want := range []string{
		"GENERAL STATISTICS", "WIN RATE BY DAY", "BY ASSET", "BY HOUR FOR EACH DAY",
		"66.67%", "+30.00 USD", "EUR/USD", "BTC/USD OTC", "2024-01-02:", "a.xlsx, b.xlsx",
	} {
		assert.Contains(t, s, want)
	}
}

func TestMarkdown(t *testing.T) {
	_, a, run := fixture()

	md := Markdown(a, run)

	assert.True(t, strings.HasPrefix(md, "# 📊 Trade analysis 2024-01-03_09-30-15"))
	assert.Contains(t, md, "- a.xlsx\n- b.xlsx\n")
	assert.Contains(t, md, "**Total trades:** 3")
	assert.Contains(t, md, "- Win rate: 66.67%")
	assert.Contains(t, md, "- Profit factor: 4.00")
	assert.Contains(t, md, "| 2024-01-01 | 2 | 50.00% | +10.00 |")
	assert.Contains(t, md, "| BTC/USD OTC | 1 | 100.00% | +20.00 | 1 | 0 |")
	assert.Contains(t, md, "### 2024-01-02")
	assert.Contains(t, md, "| 12 | 1 | 100.00% | +20.00 |")
}

func TestSaveMarkdownAndShow(t *testing.T) {
	_, a, run := fixture()
	dir := filepath.Join(t.TempDir(), "outputs")

	path, err := SaveMarkdown(dir, a, run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-01-03_09-30-15 statistics.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Markdown(a, run), string(data))

	rendered, err := Show(path, 100)
	require.NoError(t, err)
	assert.Contains(t, rendered, "General")

	_, err = Show(filepath.Join(dir, "missing.md"), 80)
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	_, a, run := fixture()
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, a, run))

	s := buf.String()
	assert.Contains(t, s, `"total_trades": 3`)
	assert.Contains(t, s, `"profit_factor": 4`)
	assert.Contains(t, s, `"date": "2024-01-01"`)
	assert.Contains(t, s, `"otc": "all assets"`)
}

func TestWriteJSON_InfiniteProfitFactor(t *testing.T) {
	trades, _, run := fixture()
	a := stats.Analyze(trades[:1], 100, 10)
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, a, run))
	assert.Contains(t, buf.String(), `"profit_factor": "inf"`)
}

func TestExportXLSX(t *testing.T) {
	trades, a, run := fixture()
	dir := t.TempDir()

	path, err := ExportXLSX(dir, a, trades, run)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03_09-30-15 statistics.xlsx", filepath.Base(path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{"Summary", "Days", "Assets", "Trades"}, fx.GetSheetList())

	rows, err := fx.GetRows("Trades")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Open time", "Asset", "Result", "Profit", "Stake", "Expiration", "Currency", "File"}, rows[0])
	assert.Equal(t, "EUR/USD", rows[1][1])
	assert.Equal(t, "Win", rows[1][2])
	assert.Equal(t, "b.xlsx", rows[3][7])

	days, err := fx.GetRows("Days")
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-01", days[1][0])

	summary, err := fx.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total trades", "3"}, summary[1])
}
