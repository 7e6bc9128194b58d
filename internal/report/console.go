package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"winrate/internal/stats"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// ColorWinRate paints a win rate green at or above the threshold, red below
func ColorWinRate(wr float64) string {
	s := fmt.Sprintf("%.2f%%", wr)
	if wr >= stats.WinRateThreshold {
		return green(s)
	}
	return red(s)
}

// ColorProfit paints profits green, losses red and zero yellow
func ColorProfit(v float64) string {
	s := formatProfit(v)
	switch {
	case v > 0:
		return green(s)
	case v < 0:
		return red(s)
	}
	return yellow(s)
}

// Console prints the analysis as coloured text and tables
type Console struct {
	out io.Writer
}

// NewConsole creates a console printer
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) section(title string) {
	line := strings.Repeat("=", 70)
	fmt.Fprintf(c.out, "\n%s\n%s\n%s\n", line, bold(title), line)
}

// PrintAll prints every block in order
func (c *Console) PrintAll(a *stats.Analysis, run Run) {
	c.PrintGeneral(a, run)
	c.PrintDays(a.Days)
	c.PrintAssets(a.Assets)
	c.PrintHours(a.HoursByDay)
}

// PrintGeneral prints the headline metrics
func (c *Console) PrintGeneral(a *stats.Analysis, run Run) {
	m := a.Metrics
	c.section("GENERAL STATISTICS")

	rows := [][2]string{
		{"Files", strings.Join(run.FileNames(), ", ")},
		{"OTC filter", run.OTC},
		{"Expiration", formatExpiration(run.Expiration)},
		{"Period", formatBound(run.From) + " .. " + formatBound(run.To)},
		{"Total trades", fmt.Sprintf("%d (%s / %s)", m.TotalTrades, green(m.Wins), red(m.Losses))},
		{"Win rate", ColorWinRate(m.WinRate)},
		{"Total profit", ColorProfit(m.TotalProfit) + " " + m.Currency},
		{"Profit factor", formatRatio(m.ProfitFactor)},
		{"Average win", green(fmt.Sprintf("+%.2f", m.AvgWin))},
		{"Average loss", red(fmt.Sprintf("-%.2f", m.AvgLoss))},
		{"Expectancy", ColorProfit(m.Expectancy)},
		{"Max win streak", green(m.MaxWinStreak)},
		{"Max loss streak", red(m.MaxLossStreak)},
		{"Balance", fmt.Sprintf("%.2f -> %.2f %s", a.StartingBalance, a.CurrentBalance, m.Currency)},
		{"Max drawdown", fmt.Sprintf("%.2f (%.2f%%)", a.Drawdown.Amount, a.Drawdown.Percent)},
	}
	for _, r := range rows {
		fmt.Fprintf(c.out, "%-17s %s\n", r[0]+":", r[1])
	}
}

// PrintDays prints the per-day table
func (c *Console) PrintDays(days []stats.DayStat) {
	c.section("WIN RATE BY DAY")

	table := tablewriter.NewTable(c.out,
		tablewriter.WithHeader([]string{"Date", "Trades", "Win rate", "Profit"}),
	)
	for _, d := range days {
		table.Append([]string{
			d.Date.String(),
			fmt.Sprintf("%d", d.Trades),
			ColorWinRate(d.WinRate),
			ColorProfit(d.Profit),
		})
	}
	table.Render()
}

// PrintAssets prints the per-asset table
func (c *Console) PrintAssets(assets []stats.AssetStat) {
	c.section("BY ASSET")

	table := tablewriter.NewTable(c.out,
		tablewriter.WithHeader([]string{"Asset", "Trades", "Win rate", "Profit", "Win streak", "Loss streak"}),
	)
	for _, s := range assets {
		table.Append([]string{
			s.Asset,
			fmt.Sprintf("%d", s.Trades),
			ColorWinRate(s.WinRate),
			ColorProfit(s.Profit),
			green(s.MaxWinStreak),
			red(s.MaxLossStreak),
		})
	}
	table.Render()
}

// PrintHours prints one hour table per trading day
func (c *Console) PrintHours(days []stats.DayHours) {
	c.section("BY HOUR FOR EACH DAY")

	for _, d := range days {
		fmt.Fprintf(c.out, "\n%s\n", cyan(d.Date.String()+":"))
		table := tablewriter.NewTable(c.out,
			tablewriter.WithHeader([]string{"Hour", "Trades", "Win rate", "Profit"}),
		)
		for _, h := range d.Hours {
			table.Append([]string{
				fmt.Sprintf("%02d", h.Hour),
				fmt.Sprintf("%d", h.Trades),
				ColorWinRate(h.WinRate),
				ColorProfit(h.Profit),
			})
		}
		table.Render()
	}
}
