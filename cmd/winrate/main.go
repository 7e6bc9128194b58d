package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"winrate/internal/config"
	"winrate/internal/logger"
)

const legacyConfigFile = "analyzer_config.ini"

var (
	cfgFile    string
	workers    int
	fileList   []string
	otcChoice  int
	balance    float64
	expiration int
	fromFlag   string
	toFlag     string
	targetCur  string
	format     string
	markdown   bool
	xlsx       bool
	htmlCharts bool
	serve      bool
	historyLim int
	showWidth  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "winrate",
		Short: "Binary options trade log analyzer",
		Long: `Winrate analyses broker trade exports (*.xlsx) and reports win rate,
profit, streaks, per-day/per-asset/per-hour statistics and balance history.

Every question asked during a run can be answered up front with a flag.

Examples:
  winrate
  winrate analyze --files trades/march.xlsx --otc 3 --balance 1000 --expiration 0
  winrate history
  winrate show "outputs/2024-03-31_18-00-00 statistics.md"
  winrate rate USD RUB`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAnalyze,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path (.yaml or legacy .ini)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse trade exports (default command)",
		RunE:  runAnalyze,
	}
	for _, c := range []*cobra.Command{rootCmd, analyzeCmd} {
		addAnalyzeFlags(c)
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous analyze runs",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLim, "limit", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	showCmd := &cobra.Command{
		Use:   "show <report.md>",
		Short: "Render a saved markdown report in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().IntVar(&showWidth, "width", 100, "word wrap width")

	rateCmd := &cobra.Command{
		Use:   "rate <base> <target>",
		Short: "Print the current exchange rate",
		Args:  cobra.ExactArgs(2),
		RunE:  runRate,
	}

	rootCmd.AddCommand(analyzeCmd, historyCmd, showCmd, rateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addAnalyzeFlags(c *cobra.Command) {
	f := c.Flags()
	f.IntVar(&workers, "workers", 4, "number of workbooks read in parallel")
	f.StringSliceVar(&fileList, "files", nil, "workbooks to analyse (default: ask)")
	f.IntVar(&otcChoice, "otc", 0, "asset filter: 1 only OTC, 2 only non-OTC, 3 all (default: ask)")
	f.Float64Var(&balance, "balance", 0, "current account balance (default: ask)")
	f.IntVar(&expiration, "expiration", -1, "expiration in seconds, 0 for all (default: ask)")
	f.StringVar(&fromFlag, "from", "", "period start, e.g. 01.03.2024")
	f.StringVar(&toFlag, "to", "", "period end, e.g. 31.03.2024")
	f.StringVar(&targetCur, "currency", "", "convert mixed-currency trades to this currency without asking")
	f.StringVar(&format, "format", "table", "output format: table, json")
	f.BoolVar(&markdown, "markdown", true, "save the markdown report")
	f.BoolVar(&xlsx, "xlsx", false, "export statistics to xlsx")
	f.BoolVar(&htmlCharts, "charts", true, "save the HTML chart page")
	f.BoolVar(&serve, "serve", false, "serve the report on localhost until Ctrl+C")
}

// setup loads the configuration and builds the logger
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		// fall back to the legacy INI file when there is no YAML config
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(legacyConfigFile); err == nil {
				path = legacyConfigFile
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
