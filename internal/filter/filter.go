// Package filter narrows a trade set by asset type, expiration and period.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"winrate/pkg/model"
)

// ErrNoTrades is returned when a selection or filter leaves nothing to analyse
var ErrNoTrades = errors.New("no trades to analyse")

// OTCMode selects which assets survive the OTC filter
type OTCMode int

const (
	OnlyOTC OTCMode = iota + 1
	NoOTC
	AllAssets
)

func (m OTCMode) String() string {
	switch m {
	case OnlyOTC:
		return "only OTC"
	case NoOTC:
		return "only non-OTC"
	default:
		return "all"
	}
}

// ParseOTCMode accepts the menu choices "1", "2" and "3"
func ParseOTCMode(s string) (OTCMode, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return OnlyOTC, nil
	case "2":
		return NoOTC, nil
	case "3":
		return AllAssets, nil
	}
	return 0, fmt.Errorf("enter 1, 2 or 3")
}

// OTC applies the asset-type filter
func OTC(trades []model.Trade, mode OTCMode) []model.Trade {
	switch mode {
	case OnlyOTC:
		return keep(trades, func(t model.Trade) bool { return t.IsOTC() })
	case NoOTC:
		return keep(trades, func(t model.Trade) bool { return !t.IsOTC() })
	default:
		return trades
	}
}

// Expiration keeps trades with exactly the given duration; zero keeps all
func Expiration(trades []model.Trade, seconds int) []model.Trade {
	if seconds <= 0 {
		return trades
	}
	return keep(trades, func(t model.Trade) bool { return t.ExpirationSec == seconds })
}

// Period keeps trades opened within [from, to]; a nil bound is open
func Period(trades []model.Trade, from, to *time.Time) []model.Trade {
	if from == nil && to == nil {
		return trades
	}
	return keep(trades, func(t model.Trade) bool {
		if from != nil && t.OpenTime.Before(*from) {
			return false
		}
		if to != nil && t.OpenTime.After(*to) {
			return false
		}
		return true
	})
}

func keep(trades []model.Trade, pred func(model.Trade) bool) []model.Trade {
	out := make([]model.Trade, 0, len(trades))
	for _, t := range trades {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
