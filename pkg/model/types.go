package model

import (
	"strings"
	"time"
)

// Outcome is the result of a single option
type Outcome string

const (
	Win  Outcome = "Win"
	Loss Outcome = "Loss"
)

// DefaultCurrency is reported when there are no trades to take a currency from
const DefaultCurrency = "USD"

// Trade represents one closed binary option from a broker export
type Trade struct {
	Asset         string    `json:"asset"`
	OpenTime      time.Time `json:"open_time"`
	Profit        float64   `json:"profit"`
	Stake         float64   `json:"stake"`
	Currency      string    `json:"currency"`
	Expiration    string    `json:"expiration"`     // raw export value, e.g. "S60"
	ExpirationSec int       `json:"expiration_sec"` // parsed duration in seconds
	Source        string    `json:"source"`         // workbook the row came from
}

// Outcome classifies the trade: any positive profit is a win
func (t Trade) Outcome() Outcome {
	if t.Profit > 0 {
		return Win
	}
	return Loss
}

// IsWin is shorthand for Outcome() == Win
func (t Trade) IsWin() bool {
	return t.Profit > 0
}

// Date returns the calendar day of the open time
func (t Trade) Date() Day {
	return DayOf(t.OpenTime)
}

// Hour returns the open hour (0-23)
func (t Trade) Hour() int {
	return t.OpenTime.Hour()
}

// IsOTC reports whether the asset is an over-the-counter instrument
func (t Trade) IsOTC() bool {
	return strings.Contains(t.Asset, "OTC")
}

// Day is a calendar date without time of day
type Day struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DayOf truncates t to its calendar date in t's location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Time returns midnight of the day in UTC
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// MarshalText keeps days readable in JSON map keys and values
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// BalancePoint is the account state right before a trade
type BalancePoint struct {
	Time             time.Time `json:"time"`
	Profit           float64   `json:"profit"`
	CumulativeProfit float64   `json:"cumulative_profit"`
	Balance          float64   `json:"balance"`
}
