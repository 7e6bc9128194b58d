package currency

import (
	"context"
	"fmt"

	"winrate/pkg/model"
)

// Currencies lists the distinct non-empty trade currencies in first-seen order
func Currencies(trades []model.Trade) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range trades {
		c := Normalize(t.Currency)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// FetchRates resolves, for every currency other than target, how many units of
// that currency one unit of target buys. Currencies that fail are reported in
// the returned error map and left out of the rates.
func FetchRates(ctx context.Context, p Provider, target string, currencies []string) (map[string]float64, map[string]error) {
	target = Normalize(target)
	rates := make(map[string]float64, len(currencies))
	var failed map[string]error

	for _, c := range currencies {
		c = Normalize(c)
		if c == target {
			continue
		}
		rate, err := p.Rate(ctx, target, c)
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[c] = err
			continue
		}
		rates[c] = rate
	}
	return rates, failed
}

// Convert returns a copy of trades expressed in target. rates[c] is how many
// units of c one unit of target buys, so amounts are divided by it. A missing
// rate is treated as 1.
func Convert(trades []model.Trade, target string, rates map[string]float64) []model.Trade {
	target = Normalize(target)
	out := make([]model.Trade, len(trades))
	for i, t := range trades {
		c := Normalize(t.Currency)
		if c != target {
			if rate, ok := rates[c]; ok && rate > 0 {
				t.Profit /= rate
				t.Stake /= rate
			}
		}
		t.Currency = target
		out[i] = t
	}
	return out
}

// Describe formats a rate the way the console shows it: "1 USD = 92.5000 RUB"
func Describe(target, c string, rate float64) string {
	return fmt.Sprintf("1 %s = %.4f %s", Normalize(target), rate, Normalize(c))
}
