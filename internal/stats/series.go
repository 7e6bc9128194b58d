package stats

import (
	"winrate/pkg/model"
)

// DayValue is one point of a per-day series
type DayValue struct {
	Date  model.Day `json:"date"`
	Value float64   `json:"value"`
}

// Drawdown is the worst peak-to-trough balance decline
type Drawdown struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// RollingWindow returns the window size used for n trades: percent of n,
// truncated, and never below one.
func RollingWindow(n, percent int) int {
	return max(int(float64(n)*float64(percent)/100), 1)
}

// RollingWinRate is the trailing win rate (%) of trades in time order. Early
// points use however many trades are available.
func RollingWinRate(trades []model.Trade, percent int) []float64 {
	ordered := Chronological(trades)
	window := RollingWindow(len(ordered), percent)

	out := make([]float64, len(ordered))
	wins := 0
	for i, t := range ordered {
		if t.IsWin() {
			wins++
		}
		if i >= window && ordered[i-window].IsWin() {
			wins--
		}
		size := min(i+1, window)
		out[i] = float64(wins) / float64(size) * 100
	}
	return out
}

// BalanceHistory reconstructs the account balance backwards from the current
// balance. Points are in time order and each balance is the value right before
// that trade: current minus the trade's own profit and every later one.
func BalanceHistory(trades []model.Trade, current float64) []model.BalancePoint {
	ordered := Chronological(trades)
	points := make([]model.BalancePoint, len(ordered))

	fromHere := 0.0
	for i := len(ordered) - 1; i >= 0; i-- {
		fromHere += ordered[i].Profit
		points[i] = model.BalancePoint{
			Time:    ordered[i].OpenTime,
			Profit:  ordered[i].Profit,
			Balance: current - fromHere,
		}
	}

	running := 0.0
	for i := range points {
		running += points[i].Profit
		points[i].CumulativeProfit = running
	}
	return points
}

// StartingBalance is the balance before the first trade of the history
func StartingBalance(points []model.BalancePoint, current float64) float64 {
	if len(points) == 0 {
		return current
	}
	return points[0].Balance
}

// DailyBalance is the closing balance of each day
func DailyBalance(points []model.BalancePoint) []DayValue {
	var out []DayValue
	for _, p := range points {
		d := model.DayOf(p.Time)
		if n := len(out); n > 0 && out[n-1].Date == d {
			out[n-1].Value = p.Balance
			continue
		}
		out = append(out, DayValue{Date: d, Value: p.Balance})
	}
	return out
}

// CumulativeProfitByDay is the running profit total at the end of each day
func CumulativeProfitByDay(trades []model.Trade) []DayValue {
	var out []DayValue
	running := 0.0
	for _, t := range Chronological(trades) {
		running += t.Profit
		d := t.Date()
		if n := len(out); n > 0 && out[n-1].Date == d {
			out[n-1].Value = running
			continue
		}
		out = append(out, DayValue{Date: d, Value: running})
	}
	for i := range out {
		out[i].Value = Round2(out[i].Value)
	}
	return out
}

// MaxDrawdown measures the deepest decline from a running balance peak over
// the balances before each trade, closed by the current balance.
func MaxDrawdown(points []model.BalancePoint, current float64) Drawdown {
	var dd Drawdown
	if len(points) == 0 {
		return dd
	}

	levels := make([]float64, 0, len(points)+1)
	for _, p := range points {
		levels = append(levels, p.Balance)
	}
	levels = append(levels, current)

	peak := levels[0]
	for _, level := range levels[1:] {
		if level > peak {
			peak = level
			continue
		}
		if amount := peak - level; amount > dd.Amount {
			dd.Amount = amount
			if peak > 0 {
				dd.Percent = amount / peak * 100
			}
		}
	}
	dd.Amount = Round2(dd.Amount)
	dd.Percent = Round2(dd.Percent)
	return dd
}
