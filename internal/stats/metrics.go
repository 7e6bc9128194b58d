package stats

import (
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"winrate/pkg/model"
)

// WinRateThreshold separates good (green) from bad (red) win rates, in percent
const WinRateThreshold = 50.0

// Ratio is a float that encodes +Inf as "inf" in JSON
type Ratio float64

// IsInf reports whether the ratio is unbounded
func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 0)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() || math.IsNaN(float64(r)) {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.FormatFloat(float64(r), 'f', -1, 64)), nil
}

// Metrics holds the headline numbers of a trade set
type Metrics struct {
	TotalTrades   int     `json:"total_trades"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	GrossProfit   float64 `json:"gross_profit"`
	GrossLoss     float64 `json:"gross_loss"`    // absolute value
	ProfitFactor  Ratio   `json:"profit_factor"` // gross profit / gross loss
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"` // absolute value
	Expectancy    float64 `json:"expectancy"`
	MaxWinStreak  int     `json:"max_win_streak"`
	MaxLossStreak int     `json:"max_loss_streak"`
	Currency      string  `json:"currency"`
}

// Main computes the headline metrics.
//
// Only strictly positive and strictly negative profits count towards gross
// profit and gross loss; a refund (zero profit) is a loss for the win rate but
// moves neither. Without any negative profit the profit factor is +Inf.
func Main(trades []model.Trade) Metrics {
	m := Metrics{
		TotalTrades: len(trades),
		Currency:    model.DefaultCurrency,
	}
	if len(trades) == 0 {
		return m
	}
	if trades[0].Currency != "" {
		m.Currency = trades[0].Currency
	}

	var posCount, negCount int
	for _, t := range trades {
		if t.IsWin() {
			m.Wins++
		} else {
			m.Losses++
		}
		m.TotalProfit += t.Profit
		switch {
		case t.Profit > 0:
			m.GrossProfit += t.Profit
			posCount++
		case t.Profit < 0:
			m.GrossLoss -= t.Profit
			negCount++
		}
	}

	m.WinRate = percent(m.Wins, m.TotalTrades)
	m.Expectancy = m.TotalProfit / float64(m.TotalTrades)

	if negCount == 0 {
		m.ProfitFactor = Ratio(math.Inf(1))
	} else {
		m.ProfitFactor = Ratio(m.GrossProfit / m.GrossLoss)
	}
	if posCount > 0 {
		m.AvgWin = m.GrossProfit / float64(posCount)
	}
	if negCount > 0 {
		m.AvgLoss = m.GrossLoss / float64(negCount)
	}

	ordered := Chronological(trades)
	m.MaxWinStreak = MaxStreak(ordered, model.Win)
	m.MaxLossStreak = MaxStreak(ordered, model.Loss)
	return m
}

// MaxStreak returns the longest run of consecutive outcomes in the given order.
// Callers wanting time order pass Chronological(trades).
func MaxStreak(trades []model.Trade, outcome model.Outcome) int {
	best, run := 0, 0
	for _, t := range trades {
		if t.Outcome() == outcome {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	return best
}

// Chronological returns a copy of trades sorted by open time; ties keep input order
func Chronological(trades []model.Trade) []model.Trade {
	out := make([]model.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpenTime.Before(out[j].OpenTime)
	})
	return out
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
