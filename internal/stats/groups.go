package stats

import (
	"sort"

	"winrate/pkg/model"
)

// Bucket aggregates a group of trades
type Bucket struct {
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
	Profit  float64 `json:"profit"`
}

// DayStat is the performance of one calendar day
type DayStat struct {
	Date model.Day `json:"date"`
	Bucket
}

// HourStat is the performance of one hour of a day
type HourStat struct {
	Hour int `json:"hour"`
	Bucket
}

// DayHours lists the hours traded on one day
type DayHours struct {
	Date  model.Day  `json:"date"`
	Hours []HourStat `json:"hours"`
}

// AssetStat is the performance of one instrument
type AssetStat struct {
	Asset         string  `json:"asset"`
	Trades        int     `json:"trades"`
	WinRate       float64 `json:"win_rate"`
	Profit        float64 `json:"profit"`
	MaxWinStreak  int     `json:"max_win_streak"`
	MaxLossStreak int     `json:"max_loss_streak"`
}

// HourRate is the win rate for an hour of day across all dates
type HourRate struct {
	Hour      int     `json:"hour"`
	Trades    int     `json:"trades"`
	WinRate   float64 `json:"win_rate"`
	HasTrades bool    `json:"has_trades"`
}

// WeekStat is the performance of one ISO week
type WeekStat struct {
	Year     int       `json:"year"`
	Week     int       `json:"week"`
	FirstDay model.Day `json:"first_day"`
	Trades   int       `json:"trades"`
	WinRate  float64   `json:"win_rate"`
}

type accumulator struct {
	trades int
	wins   int
	profit float64
}

func (a *accumulator) add(t model.Trade) {
	a.trades++
	if t.IsWin() {
		a.wins++
	}
	a.profit += t.Profit
}

func (a accumulator) bucket() Bucket {
	return Bucket{
		Trades:  a.trades,
		WinRate: Round2(percent(a.wins, a.trades)),
		Profit:  Round2(a.profit),
	}
}

// ByDay groups trades by calendar date, ascending
func ByDay(trades []model.Trade) []DayStat {
	acc := make(map[model.Day]*accumulator)
	for _, t := range trades {
		d := t.Date()
		if acc[d] == nil {
			acc[d] = &accumulator{}
		}
		acc[d].add(t)
	}

	out := make([]DayStat, 0, len(acc))
	for d, a := range acc {
		out = append(out, DayStat{Date: d, Bucket: a.bucket()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ByHourPerDay groups each day's trades by open hour
func ByHourPerDay(trades []model.Trade) []DayHours {
	acc := make(map[model.Day]map[int]*accumulator)
	for _, t := range trades {
		d := t.Date()
		if acc[d] == nil {
			acc[d] = make(map[int]*accumulator)
		}
		h := t.Hour()
		if acc[d][h] == nil {
			acc[d][h] = &accumulator{}
		}
		acc[d][h].add(t)
	}

	out := make([]DayHours, 0, len(acc))
	for d, hours := range acc {
		dh := DayHours{Date: d, Hours: make([]HourStat, 0, len(hours))}
		for h, a := range hours {
			dh.Hours = append(dh.Hours, HourStat{Hour: h, Bucket: a.bucket()})
		}
		sort.Slice(dh.Hours, func(i, j int) bool { return dh.Hours[i].Hour < dh.Hours[j].Hour })
		out = append(out, dh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ByAsset computes per-asset statistics, best win rate first, ties by name.
// Streaks are measured on each asset's own trades in time order.
func ByAsset(trades []model.Trade) []AssetStat {
	groups := make(map[string][]model.Trade)
	for _, t := range trades {
		groups[t.Asset] = append(groups[t.Asset], t)
	}

	out := make([]AssetStat, 0, len(groups))
	for asset, group := range groups {
		out = append(out, assetStat(asset, group))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}

func assetStat(asset string, trades []model.Trade) AssetStat {
	ordered := Chronological(trades)
	var a accumulator
	for _, t := range ordered {
		a.add(t)
	}
	b := a.bucket()
	return AssetStat{
		Asset:         asset,
		Trades:        b.Trades,
		WinRate:       b.WinRate,
		Profit:        b.Profit,
		MaxWinStreak:  MaxStreak(ordered, model.Win),
		MaxLossStreak: MaxStreak(ordered, model.Loss),
	}
}

// HourOfDay returns 24 buckets; hours without trades have HasTrades false
func HourOfDay(trades []model.Trade) []HourRate {
	var acc [24]accumulator
	for _, t := range trades {
		acc[t.Hour()].add(t)
	}

	out := make([]HourRate, 24)
	for h := range out {
		out[h] = HourRate{Hour: h, Trades: acc[h].trades, HasTrades: acc[h].trades > 0}
		if out[h].HasTrades {
			out[h].WinRate = Round2(percent(acc[h].wins, acc[h].trades))
		}
	}
	return out
}

// ByWeek groups trades by ISO (year, week), ordered by the first trading day
func ByWeek(trades []model.Trade) []WeekStat {
	type key struct{ year, week int }
	acc := make(map[key]*accumulator)
	first := make(map[key]model.Day)

	for _, t := range trades {
		y, w := t.OpenTime.ISOWeek()
		k := key{y, w}
		if acc[k] == nil {
			acc[k] = &accumulator{}
			first[k] = t.Date()
		}
		acc[k].add(t)
		if d := t.Date(); d.Before(first[k]) {
			first[k] = d
		}
	}

	out := make([]WeekStat, 0, len(acc))
	for k, a := range acc {
		out = append(out, WeekStat{
			Year:     k.year,
			Week:     k.week,
			FirstDay: first[k],
			Trades:   a.trades,
			WinRate:  Round2(percent(a.wins, a.trades)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstDay.Before(out[j].FirstDay) })
	return out
}
