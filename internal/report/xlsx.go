package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"winrate/internal/stats"
	"winrate/pkg/model"
)

const (
	summarySheet = "Summary"
	daysSheet    = "Days"
	assetsSheet  = "Assets"
	tradesSheet  = "Trades"
)

// ExportXLSX writes the analysis and the analysed trades to
// "<dir>/<timestamp> statistics.xlsx"
func ExportXLSX(dir string, a *stats.Analysis, trades []model.Trade, run Run) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, run.Timestamp()+" statistics.xlsx")

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		return "", err
	}
	for _, name := range []string{daysSheet, assetsSheet, tradesSheet} {
		if _, err := fx.NewSheet(name); err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	header, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating style: %w", err)
	}

	m := a.Metrics
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total trades", m.TotalTrades},
		{"Wins", m.Wins},
		{"Losses", m.Losses},
		{"Win rate %", stats.Round2(m.WinRate)},
		{"Total profit", stats.Round2(m.TotalProfit)},
		{"Profit factor", formatRatio(m.ProfitFactor)},
		{"Average win", stats.Round2(m.AvgWin)},
		{"Average loss", stats.Round2(m.AvgLoss)},
		{"Max win streak", m.MaxWinStreak},
		{"Max loss streak", m.MaxLossStreak},
		{"Starting balance", stats.Round2(a.StartingBalance)},
		{"Current balance", stats.Round2(a.CurrentBalance)},
		{"Max drawdown", a.Drawdown.Amount},
		{"Currency", m.Currency},
	}

	days := [][]interface{}{{"Date", "Trades", "Win rate %", "Profit"}}
	for _, d := range a.Days {
		days = append(days, []interface{}{d.Date.String(), d.Trades, d.WinRate, d.Profit})
	}

	assets := [][]interface{}{{"Asset", "Trades", "Win rate %", "Profit", "Win streak", "Loss streak"}}
	for _, s := range a.Assets {
		assets = append(assets, []interface{}{s.Asset, s.Trades, s.WinRate, s.Profit, s.MaxWinStreak, s.MaxLossStreak})
	}

	rows := [][]interface{}{{"Open time", "Asset", "Result", "Profit", "Stake", "Expiration", "Currency", "File"}}
	for _, t := range stats.Chronological(trades) {
		rows = append(rows, []interface{}{
			t.OpenTime.Format("2006-01-02 15:04:05"),
			t.Asset,
			string(t.Outcome()),
			stats.Round2(t.Profit),
			stats.Round2(t.Stake),
			t.ExpirationSec,
			t.Currency,
			filepath.Base(t.Source),
		})
	}

	for _, s := range []struct {
		name string
		rows [][]interface{}
	}{
		{summarySheet, summary},
		{daysSheet, days},
		{assetsSheet, assets},
		{tradesSheet, rows},
	} {
		if err := writeSheet(fx, s.name, s.rows, header); err != nil {
			return "", err
		}
	}

	if err := fx.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

func writeSheet(fx *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "A", "A", 20)
}
