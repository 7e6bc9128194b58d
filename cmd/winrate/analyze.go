package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"winrate/internal/chart"
	"winrate/internal/config"
	"winrate/internal/currency"
	"winrate/internal/filter"
	"winrate/internal/journal"
	"winrate/internal/logger"
	"winrate/internal/prompt"
	"winrate/internal/report"
	"winrate/internal/stats"
	"winrate/internal/tradelog"
	"winrate/internal/web"
	"winrate/pkg/model"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	// questions stay off stdout when it carries JSON
	promptOut := out
	if format == "json" {
		promptOut = cmd.ErrOrStderr()
	}
	p := prompt.New(cmd.InOrStdin(), promptOut)
	if format != "json" {
		color.New(color.FgCyan, color.Bold).Fprintf(out, "%s v%s\n", config.AppName, config.AppVersion)
	}

	paths, err := selectFiles(p, cfg)
	if err != nil {
		return err
	}

	mode, err := otcMode(p)
	if err != nil {
		return err
	}

	trades, err := loadTrades(ctx, cfg, log, paths)
	if err != nil {
		return err
	}
	trades = filter.OTC(trades, mode)
	if len(trades) == 0 {
		return fmt.Errorf("%s: %w", mode, filter.ErrNoTrades)
	}
	log.Info("trades loaded", zap.Int("files", len(paths)), zap.Int("trades", len(trades)), zap.Stringer("otc", mode))

	trades, err = convertCurrencies(ctx, cfg, log, p, trades)
	if err != nil {
		return err
	}
	tradeCurrency := stats.Main(trades).Currency

	current := balance
	if current <= 0 {
		if current, err = p.Balance(tradeCurrency); err != nil {
			return err
		}
	}

	expirationSec := expiration
	if expirationSec < 0 {
		if trades, expirationSec, err = p.Expiration(trades); err != nil {
			return err
		}
	} else {
		trades = filter.Expiration(trades, expirationSec)
		if len(trades) == 0 {
			return fmt.Errorf("expiration %ds: %w", expirationSec, filter.ErrNoTrades)
		}
	}

	var from, to *time.Time
	if fromFlag != "" || toFlag != "" {
		if trades, from, to, err = periodFromFlags(trades); err != nil {
			return err
		}
	} else if interactive(cmd) {
		if trades, from, to, err = p.Period(trades); err != nil {
			return err
		}
	}

	a := stats.Analyze(trades, current, cfg.Analysis.RollingWindowPercent)
	run := report.Run{
		Files:       paths,
		OTC:         mode.String(),
		Expiration:  expirationSec,
		From:        from,
		To:          to,
		Currency:    tradeCurrency,
		GeneratedAt: time.Now(),
	}

	if format == "json" {
		if err := report.WriteJSON(out, a, run); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
	} else {
		report.NewConsole(out).PrintAll(a, run)
	}

	if err := saveOutputs(ctx, cfg, log, a, trades, run); err != nil {
		return err
	}

	if interactive(cmd) && !serve {
		if err := p.Pause(); err != nil && !errors.Is(err, prompt.ErrInputClosed) {
			return err
		}
	}
	return nil
}

// interactive reports whether the run still asks questions; it does unless
// every prompt was answered by a flag.
func interactive(cmd *cobra.Command) bool {
	return !(cmd.Flags().Changed("files") && otcChoice != 0 && balance > 0 && expiration >= 0)
}

func selectFiles(p *prompt.Prompter, cfg *config.Config) ([]string, error) {
	if len(fileList) > 0 {
		for _, f := range fileList {
			if _, err := os.Stat(f); err != nil {
				return nil, fmt.Errorf("trade file: %w", err)
			}
		}
		return fileList, nil
	}

	files, err := tradelog.Discover(cfg.Paths.TradesDir, cfg.Analysis.MaxFilesToShow)
	if err != nil {
		return nil, err
	}
	indices, err := p.SelectFiles(files)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(indices))
	for i, idx := range indices {
		paths[i] = files[idx].Path
	}
	return paths, nil
}

func otcMode(p *prompt.Prompter) (filter.OTCMode, error) {
	if otcChoice == 0 {
		return p.OTCMode()
	}
	return filter.ParseOTCMode(strconv.Itoa(otcChoice))
}

func loadTrades(ctx context.Context, cfg *config.Config, log *logger.Logger, paths []string) ([]model.Trade, error) {
	loader := tradelog.NewLoader(workers, log)

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Loading"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	loader.SetProgressCallback(func(loaded, total int) {
		bar.Add(1)
	})

	trades, err := loader.Load(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if len(trades) == 0 {
		return nil, filter.ErrNoTrades
	}
	return trades, nil
}

func newRateProvider(cfg *config.Config, log *logger.Logger) currency.Provider {
	api := currency.NewExchangeRateAPI(cfg.Rates.BaseURL, cfg.Rates.Timeout, cfg.Rates.RateLimit, log)
	providers := []currency.Provider{api}
	if cfg.Rates.BaseURL != currency.DefaultBaseURL {
		// a custom endpoint falls back to the public one
		providers = append(providers, currency.NewExchangeRateAPI(currency.DefaultBaseURL, cfg.Rates.Timeout, cfg.Rates.RateLimit, log))
	}
	return currency.NewCachingProvider(currency.NewFallbackProvider(providers...), cfg.Rates.CacheTTL)
}

// convertCurrencies brings mixed-currency trades to one currency. With
// --currency the fetched rates are used as is; otherwise the user picks the
// target and confirms or overrides each rate.
func convertCurrencies(ctx context.Context, cfg *config.Config, log *logger.Logger, p *prompt.Prompter, trades []model.Trade) ([]model.Trade, error) {
	codes := currency.Currencies(trades)
	if len(codes) < 2 {
		return trades, nil
	}

	target := currency.Normalize(targetCur)
	ask := target == ""
	if ask {
		var err error
		if target, err = p.TargetCurrency(codes); err != nil {
			return nil, err
		}
	}

	rates, failed := currency.FetchRates(ctx, newRateProvider(cfg, log), target, codes)
	for c, err := range failed {
		log.Warn("rate unavailable", zap.String("currency", c), zap.Error(err))
	}

	for _, c := range codes {
		if c == target {
			continue
		}
		rate, ok := rates[c]
		if !ask {
			if !ok {
				return nil, fmt.Errorf("no exchange rate for %s/%s: %w", target, c, failed[c])
			}
			continue
		}

		if ok {
			accepted, err := p.ConfirmRate(currency.Describe(target, c, rate))
			if err != nil {
				return nil, err
			}
			if accepted {
				continue
			}
		} else {
			color.Yellow("Could not fetch the %s/%s rate.", target, c)
		}
		manual, err := p.ManualRate(target, c)
		if err != nil {
			return nil, err
		}
		rates[c] = manual
	}

	log.Info("currencies converted", zap.String("target", target), zap.Any("rates", rates))
	return currency.Convert(trades, target, rates), nil
}

func periodFromFlags(trades []model.Trade) ([]model.Trade, *time.Time, *time.Time, error) {
	ref := stats.Chronological(trades)[len(trades)-1].OpenTime

	var from, to *time.Time
	if fromFlag != "" {
		t, err := filter.ParsePeriodBound(fromFlag, ref, true)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("--from: %w", err)
		}
		from = &t
	}
	if toFlag != "" {
		t, err := filter.ParsePeriodBound(toFlag, ref, false)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("--to: %w", err)
		}
		to = &t
	}

	filtered := filter.Period(trades, from, to)
	if len(filtered) == 0 {
		return nil, nil, nil, fmt.Errorf("period: %w", filter.ErrNoTrades)
	}
	return filtered, from, to, nil
}

func saveOutputs(ctx context.Context, cfg *config.Config, log *logger.Logger, a *stats.Analysis, trades []model.Trade, run report.Run) error {
	saved := color.New(color.FgGreen)
	dir := cfg.Paths.OutputsDir

	if markdown {
		path, err := report.SaveMarkdown(dir, a, run)
		if err != nil {
			return err
		}
		saved.Fprintf(os.Stderr, "📄 Statistics saved: %s\n", path)
	}

	if xlsx {
		path, err := report.ExportXLSX(dir, a, trades, run)
		if err != nil {
			return fmt.Errorf("exporting xlsx: %w", err)
		}
		saved.Fprintf(os.Stderr, "📊 Workbook saved: %s\n", path)
	}

	builder := chart.NewBuilder(cfg)
	if htmlCharts {
		path, err := builder.Save(dir, run.Timestamp(), a)
		if err != nil {
			return err
		}
		saved.Fprintf(os.Stderr, "📈 Charts saved: %s\n", path)
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		var err error
		store, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			// the report is already out, a broken journal should not fail the run
			log.Warn("journal unavailable", zap.Error(err))
		} else {
			defer store.Close()
			if _, err := store.Save(ctx, journal.NewEntry(a, run)); err != nil {
				log.Warn("journal write failed", zap.Error(err))
			}
		}
	}

	if serve {
		return serveReport(ctx, cfg, log, builder, store, a, run)
	}
	return nil
}

func serveReport(ctx context.Context, cfg *config.Config, log *logger.Logger, builder *chart.Builder, store *journal.Store, a *stats.Analysis, run report.Run) error {
	srv := web.NewServer(a, run, builder, store, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Web.Port)
	}()
	fmt.Fprintf(os.Stderr, "Report at http://localhost:%d (Ctrl+C to stop)\n", cfg.Web.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
