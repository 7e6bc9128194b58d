package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"winrate/internal/stats"
)

// Markdown renders the analysis as a markdown document
func Markdown(a *stats.Analysis, run Run) string {
	m := a.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "# 📊 Trade analysis %s\n\n", run.Timestamp())

	b.WriteString("## Files\n\n")
	for _, f := range run.FileNames() {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	fmt.Fprintf(&b, "\n**Total trades:** %d\n\n", m.TotalTrades)

	b.WriteString("## Filters\n\n")
	fmt.Fprintf(&b, "- OTC: %s\n", run.OTC)
	fmt.Fprintf(&b, "- Expiration: %s\n", formatExpiration(run.Expiration))
	fmt.Fprintf(&b, "- Period: %s .. %s\n\n", formatBound(run.From), formatBound(run.To))

	b.WriteString("## General statistics\n\n")
	fmt.Fprintf(&b, "- Win rate: %.2f%%\n", m.WinRate)
	fmt.Fprintf(&b, "- Total profit: %s %s\n", formatProfit(m.TotalProfit), m.Currency)
	fmt.Fprintf(&b, "- Profit factor: %s\n", formatRatio(m.ProfitFactor))
	fmt.Fprintf(&b, "- Average win: +%.2f\n", m.AvgWin)
	fmt.Fprintf(&b, "- Average loss: -%.2f\n", m.AvgLoss)
	fmt.Fprintf(&b, "- Expectancy: %s\n", formatProfit(m.Expectancy))
	fmt.Fprintf(&b, "- Max win streak: %d\n", m.MaxWinStreak)
	fmt.Fprintf(&b, "- Max loss streak: %d\n", m.MaxLossStreak)
	fmt.Fprintf(&b, "- Balance: %.2f -> %.2f\n", a.StartingBalance, a.CurrentBalance)
	fmt.Fprintf(&b, "- Max drawdown: %.2f (%.2f%%)\n\n", a.Drawdown.Amount, a.Drawdown.Percent)

	b.WriteString("## Win rate by day\n\n")
	b.WriteString("| Date | Trades | Win rate | Profit |\n")
	b.WriteString("|------|-------:|---------:|-------:|\n")
	for _, d := range a.Days {
		fmt.Fprintf(&b, "| %s | %d | %.2f%% | %s |\n", d.Date, d.Trades, d.WinRate, formatProfit(d.Profit))
	}
	b.WriteString("\n")

	b.WriteString("## By asset\n\n")
	b.WriteString("| Asset | Trades | Win rate | Profit | Win streak | Loss streak |\n")
	b.WriteString("|-------|-------:|---------:|-------:|-----------:|------------:|\n")
	for _, s := range a.Assets {
		fmt.Fprintf(&b, "| %s | %d | %.2f%% | %s | %d | %d |\n",
			s.Asset, s.Trades, s.WinRate, formatProfit(s.Profit), s.MaxWinStreak, s.MaxLossStreak)
	}
	b.WriteString("\n")

	b.WriteString("## By hour for each day\n\n")
	for _, d := range a.HoursByDay {
		fmt.Fprintf(&b, "### %s\n\n", d.Date)
		b.WriteString("| Hour | Trades | Win rate | Profit |\n")
		b.WriteString("|-----:|-------:|---------:|-------:|\n")
		for _, h := range d.Hours {
			fmt.Fprintf(&b, "| %02d | %d | %.2f%% | %s |\n", h.Hour, h.Trades, h.WinRate, formatProfit(h.Profit))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SaveMarkdown writes the markdown report to "<dir>/<timestamp> statistics.md"
func SaveMarkdown(dir string, a *stats.Analysis, run Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, run.Timestamp()+" statistics.md")
	if err := os.WriteFile(path, []byte(Markdown(a, run)), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
