package tradelog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"winrate/internal/logger"
	"winrate/pkg/model"
)

// ErrMissingColumn is returned when a workbook lacks a required header
var ErrMissingColumn = errors.New("missing column")

// ProgressCallback is called after each workbook is read. Calls never overlap
// and loaded grows by one each time.
type ProgressCallback func(loaded, total int)

// Loader reads broker exports into trades
type Loader struct {
	workers      int
	log          *logger.Logger
	progressFunc ProgressCallback
}

// NewLoader creates a loader reading up to workers files at once
func NewLoader(workers int, log *logger.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{workers: workers, log: log.Named("tradelog")}
}

// SetProgressCallback sets the progress callback function
func (l *Loader) SetProgressCallback(fn ProgressCallback) {
	l.progressFunc = fn
}

// Load reads every workbook and concatenates the trades in the order of paths.
func (l *Loader) Load(ctx context.Context, paths []string) ([]model.Trade, error) {
	perFile := make([][]model.Trade, len(paths))
	var (
		mu     sync.Mutex
		loaded int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			trades, err := ReadWorkbook(path)
			if err != nil {
				return err
			}
			perFile[i] = trades
			l.log.Debug("workbook loaded", zap.String("file", path), zap.Int("trades", len(trades)))

			mu.Lock()
			loaded++
			if l.progressFunc != nil {
				l.progressFunc(loaded, len(paths))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Trade
	for _, trades := range perFile {
		all = append(all, trades...)
	}
	return all, nil
}

// ReadWorkbook parses the first sheet of an export. The first row is the header.
func ReadWorkbook(path string) ([]model.Trade, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	positions, err := mapHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	source := filepath.Base(path)
	trades := make([]model.Trade, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		asset := cell(row, positions, colAsset)
		rawTime := cell(row, positions, colOpenTime)
		if asset == "" && rawTime == "" {
			continue
		}

		openTime, err := ParseOpenTime(rawTime)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: open time: %w", source, line, err)
		}
		profit, err := ParseAmount(cell(row, positions, colProfit))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: profit: %w", source, line, err)
		}

		t := model.Trade{
			Asset:    asset,
			OpenTime: openTime,
			Profit:   profit,
			Currency: cell(row, positions, colCurrency),
			Source:   source,
		}
		if raw := cell(row, positions, colStake); raw != "" {
			if t.Stake, err = ParseAmount(raw); err != nil {
				return nil, fmt.Errorf("%s row %d: stake: %w", source, line, err)
			}
		}
		if raw := cell(row, positions, colExpiration); raw != "" {
			t.Expiration = raw
			if t.ExpirationSec, err = ParseExpiration(raw); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", source, line, err)
			}
		}
		trades = append(trades, t)
	}
	return trades, nil
}
