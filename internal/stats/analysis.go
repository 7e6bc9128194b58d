package stats

import (
	"winrate/pkg/model"
)

// Analysis bundles every statistic the reports need
type Analysis struct {
	Metrics          Metrics              `json:"metrics"`
	Days             []DayStat            `json:"days"`
	Assets           []AssetStat          `json:"assets"`
	HoursByDay       []DayHours           `json:"hours_by_day"`
	HourOfDay        []HourRate           `json:"hour_of_day"`
	Weeks            []WeekStat           `json:"weeks"`
	RollingWindowPct int                  `json:"rolling_window_pct"`
	RollingWindow    int                  `json:"rolling_window"`
	RollingWinRate   []float64            `json:"rolling_win_rate"`
	CurrentBalance   float64              `json:"current_balance"`
	StartingBalance  float64              `json:"starting_balance"`
	Balance          []model.BalancePoint `json:"balance"`
	DailyBalance     []DayValue           `json:"daily_balance"`
	CumulativeProfit []DayValue           `json:"cumulative_profit"`
	Drawdown         Drawdown             `json:"drawdown"`
}

// Analyze runs the whole statistics pipeline over an already filtered trade set
func Analyze(trades []model.Trade, currentBalance float64, rollingPct int) *Analysis {
	balance := BalanceHistory(trades, currentBalance)
	return &Analysis{
		Metrics:          Main(trades),
		Days:             ByDay(trades),
		Assets:           ByAsset(trades),
		HoursByDay:       ByHourPerDay(trades),
		HourOfDay:        HourOfDay(trades),
		Weeks:            ByWeek(trades),
		RollingWindowPct: rollingPct,
		RollingWindow:    RollingWindow(len(trades), rollingPct),
		RollingWinRate:   RollingWinRate(trades, rollingPct),
		CurrentBalance:   currentBalance,
		StartingBalance:  StartingBalance(balance, currentBalance),
		Balance:          balance,
		DailyBalance:     DailyBalance(balance),
		CumulativeProfit: CumulativeProfitByDay(trades),
		Drawdown:         MaxDrawdown(balance, currentBalance),
	}
}
