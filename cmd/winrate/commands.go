package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"winrate/internal/currency"
	"winrate/internal/journal"
	"winrate/internal/report"
)

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyLim)
	if err != nil {
		return err
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"When", "Files", "OTC", "Exp", "Trades", "Win rate", "Profit", "PF"}),
	)
	for _, e := range entries {
		pf := "∞"
		if !e.ProfitFactor.IsInf() {
			pf = fmt.Sprintf("%.2f", float64(e.ProfitFactor))
		}
		exp := "all"
		if e.Expiration > 0 {
			exp = fmt.Sprintf("%ds", e.Expiration)
		}
		table.Append([]string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			strings.Join(e.Files, ", "),
			e.OTC,
			exp,
			fmt.Sprintf("%d", e.Trades),
			report.ColorWinRate(e.WinRate),
			report.ColorProfit(e.Profit) + " " + e.Currency,
			pf,
		})
	}
	table.Render()
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	out, err := report.Show(args[0], showWidth)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runRate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Rates.Timeout+5*time.Second)
	defer cancel()

	base, target := currency.Normalize(args[0]), currency.Normalize(args[1])
	rate, err := newRateProvider(cfg, log).Rate(ctx, base, target)
	if err != nil {
		return fmt.Errorf("fetching rate: %w", err)
	}
	fmt.Println(currency.Describe(base, target, rate))
	return nil
}
