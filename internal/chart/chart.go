// Package chart builds the HTML chart page of an analysis with go-echarts.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"winrate/internal/config"
	"winrate/internal/stats"
)

// chart cells are laid out three per row, so each gets a third of the figure
const gridColumns = 3

// Builder turns an analysis into chart components using configured colours
type Builder struct {
	graph  config.GraphConfig
	colors config.ColorsConfig
	topN   int
}

// NewBuilder creates a chart builder from the application config
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		graph:  cfg.Graph,
		colors: cfg.Colors,
		topN:   cfg.Analysis.TopAssetsCount,
	}
}

// Page assembles all nine charts
func (b *Builder) Page(a *stats.Analysis) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Trade analysis"
	page.BackgroundColor = b.graph.BackgroundColor
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		b.WinRateByDay(a),
		b.RollingWinRate(a),
		b.TopAssets(a),
		b.WinLossPie(a),
		b.HourOfDay(a),
		b.WeeklyProgress(a),
		b.Balance(a),
		b.CumulativeProfit(a),
		b.ProfitByDay(a),
	)
	return page
}

// Render writes the chart page as HTML
func (b *Builder) Render(w io.Writer, a *stats.Analysis) error {
	return b.Page(a).Render(w)
}

// Save writes the chart page to "<dir>/<timestamp> charts.html"
func (b *Builder) Save(dir, timestamp string, a *stats.Analysis) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, timestamp+" charts.html")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart page: %w", err)
	}
	defer f.Close()

	if err := b.Render(f, a); err != nil {
		return "", fmt.Errorf("rendering charts: %w", err)
	}
	return path, nil
}

func (b *Builder) global(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:           px(b.graph.FigureWidth * 100 / gridColumns),
			Height:          px(b.graph.FigureHeight * 100 / gridColumns),
			BackgroundColor: b.graph.PlotBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			TitleStyle: &opts.TextStyle{
				Color:    "#ffffff",
				FontSize: b.graph.FontSize + 3,
			},
		}),
	}
}

func (b *Builder) percentAxis() charts.GlobalOpts {
	return charts.WithYAxisOpts(opts.YAxis{
		Min:       0,
		Max:       100,
		SplitLine: b.splitLine(),
	})
}

func (b *Builder) valueAxis() charts.GlobalOpts {
	return charts.WithYAxisOpts(opts.YAxis{
		SplitLine: b.splitLine(),
	})
}

func (b *Builder) splitLine() *opts.SplitLine {
	return &opts.SplitLine{
		LineStyle: &opts.LineStyle{Color: gridColor(b.graph.GridAlpha)},
	}
}

func (b *Builder) thresholdLine() []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  fmt.Sprintf("%.0f%%", stats.WinRateThreshold),
			YAxis: stats.WinRateThreshold,
		}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Label: &opts.Label{Color: b.colors.Threshold},
		}),
	}
}

// rateColor picks the win or loss colour for a win rate
func (b *Builder) rateColor(wr float64) string {
	if wr >= stats.WinRateThreshold {
		return b.colors.Win
	}
	return b.colors.Loss
}

func (b *Builder) profitColor(v float64) string {
	if v >= 0 {
		return b.colors.Win
	}
	return b.colors.Loss
}

// WinRateByDay is a bar per trading day coloured against the 50% threshold
func (b *Builder) WinRateByDay(a *stats.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(b.global("Win rate by day"), b.percentAxis())...)

	x := make([]string, len(a.Days))
	data := make([]opts.BarData, len(a.Days))
	for i, d := range a.Days {
		x[i] = d.Date.String()
		data[i] = opts.BarData{
			Value:     d.WinRate,
			ItemStyle: &opts.ItemStyle{Color: b.rateColor(d.WinRate)},
		}
	}
	bar.SetXAxis(x).AddSeries("Win rate", data, b.thresholdLine()...)
	return bar
}

// RollingWinRate is the trailing win rate over trade numbers
func (b *Builder) RollingWinRate(a *stats.Analysis) *charts.Line {
	line := charts.NewLine()
	title := fmt.Sprintf("Rolling win rate (window %d, %d%%)", a.RollingWindow, a.RollingWindowPct)
	line.SetGlobalOptions(append(b.global(title), b.percentAxis())...)

	x := make([]string, len(a.RollingWinRate))
	data := make([]opts.LineData, len(a.RollingWinRate))
	for i, v := range a.RollingWinRate {
		x[i] = strconv.Itoa(i + 1)
		data[i] = opts.LineData{Value: stats.Round2(v)}
	}
	series := append([]charts.SeriesOpts{
		charts.WithLineStyleOpts(opts.LineStyle{Color: b.colors.Line}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: b.colors.Line}),
	}, b.thresholdLine()...)
	line.SetXAxis(x).AddSeries("Rolling win rate", data, series...)
	return line
}

// TopAssets is a horizontal bar of the best assets by win rate, best on top
func (b *Builder) TopAssets(a *stats.Analysis) *charts.Bar {
	top := a.Assets
	if b.topN > 0 && len(top) > b.topN {
		top = top[:b.topN]
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(b.global(fmt.Sprintf("Top %d assets by win rate", len(top))),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 100}))...)

	n := len(top)
	y := make([]string, n)
	data := make([]opts.BarData, n)
	for i, s := range top {
		// category axes grow upwards once reversed
		j := n - 1 - i
		y[j] = fmt.Sprintf("%s (%d)", s.Asset, s.Trades)
		data[j] = opts.BarData{
			Value:     s.WinRate,
			ItemStyle: &opts.ItemStyle{Color: b.rateColor(s.WinRate)},
		}
	}
	bar.SetXAxis(y).AddSeries("Win rate", data)
	bar.XYReversal()
	return bar
}

// WinLossPie shows the share of wins and losses
func (b *Builder) WinLossPie(a *stats.Analysis) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(b.global("Wins vs losses")...)
	pie.AddSeries("Trades", []opts.PieData{
		{Name: "Win", Value: a.Metrics.Wins, ItemStyle: &opts.ItemStyle{Color: b.colors.Win}},
		{Name: "Loss", Value: a.Metrics.Losses, ItemStyle: &opts.ItemStyle{Color: b.colors.Loss}},
	}, charts.WithLabelOpts(opts.Label{Formatter: "{b}: {c} ({d}%)"}))
	return pie
}

// HourOfDay is the win rate per hour across all days; hours without trades stay empty
func (b *Builder) HourOfDay(a *stats.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(b.global("Win rate by hour of day"), b.percentAxis())...)

	x := make([]string, len(a.HourOfDay))
	data := make([]opts.BarData, len(a.HourOfDay))
	for i, h := range a.HourOfDay {
		x[i] = fmt.Sprintf("%02d", h.Hour)
		if !h.HasTrades {
			data[i] = opts.BarData{Value: "-"}
			continue
		}
		data[i] = opts.BarData{
			Value:     h.WinRate,
			ItemStyle: &opts.ItemStyle{Color: b.rateColor(h.WinRate)},
		}
	}
	bar.SetXAxis(x).AddSeries("Win rate", data, b.thresholdLine()...)
	return bar
}

// WeeklyProgress is the win rate of each ISO week
func (b *Builder) WeeklyProgress(a *stats.Analysis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(b.global("Weekly win rate"), b.percentAxis())...)

	x := make([]string, len(a.Weeks))
	data := make([]opts.LineData, len(a.Weeks))
	for i, w := range a.Weeks {
		x[i] = fmt.Sprintf("%d-W%02d", w.Year, w.Week)
		data[i] = opts.LineData{Value: w.WinRate}
	}
	series := append([]charts.SeriesOpts{
		charts.WithLineStyleOpts(opts.LineStyle{Color: b.colors.WeekProgress}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: b.colors.WeekProgress}),
	}, b.thresholdLine()...)
	line.SetXAxis(x).AddSeries("Weekly win rate", data, series...)
	return line
}

// Balance is the closing balance of each day
func (b *Builder) Balance(a *stats.Analysis) *charts.Line {
	return b.dayLine(fmt.Sprintf("Balance (%s)", a.Metrics.Currency), "Balance", a.DailyBalance)
}

// CumulativeProfit is the running profit at the end of each day
func (b *Builder) CumulativeProfit(a *stats.Analysis) *charts.Line {
	return b.dayLine(fmt.Sprintf("Cumulative profit (%s)", a.Metrics.Currency), "Cumulative profit", a.CumulativeProfit)
}

func (b *Builder) dayLine(title, series string, values []stats.DayValue) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(b.global(title), b.valueAxis())...)

	x := make([]string, len(values))
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		x[i] = v.Date.String()
		data[i] = opts.LineData{Value: stats.Round2(v.Value)}
	}
	line.SetXAxis(x).AddSeries(series, data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: b.colors.Line}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: b.colors.Line}),
	)
	return line
}

// ProfitByDay is the net profit of each day, green above zero and red below
func (b *Builder) ProfitByDay(a *stats.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(b.global(fmt.Sprintf("Profit by day (%s)", a.Metrics.Currency)), b.valueAxis())...)

	x := make([]string, len(a.Days))
	data := make([]opts.BarData, len(a.Days))
	for i, d := range a.Days {
		x[i] = d.Date.String()
		data[i] = opts.BarData{
			Value:     d.Profit,
			ItemStyle: &opts.ItemStyle{Color: b.profitColor(d.Profit)},
		}
	}
	bar.SetXAxis(x).AddSeries("Profit", data)
	return bar
}

func px(n int) string {
	return strconv.Itoa(max(n, 100)) + "px"
}

// gridColor is a white grid line at the configured opacity
func gridColor(alpha float64) string {
	return fmt.Sprintf("rgba(255,255,255,%s)", strconv.FormatFloat(alpha, 'f', -1, 64))
}
