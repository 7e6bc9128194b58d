package report

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"winrate/internal/stats"
)

// Run describes how the analysed trade set was selected
type Run struct {
	Files       []string   `json:"files"`
	OTC         string     `json:"otc"`
	Expiration  int        `json:"expiration_sec"` // 0 = all
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Currency    string     `json:"currency"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Timestamp is the prefix of every generated file name
func (r Run) Timestamp() string {
	return r.GeneratedAt.Format("2006-01-02_15-04-05")
}

// FileNames returns the selected files without their directories
func (r Run) FileNames() []string {
	names := make([]string, len(r.Files))
	for i, f := range r.Files {
		names[i] = filepath.Base(f)
	}
	return names
}

func formatRatio(r stats.Ratio) string {
	if r.IsInf() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(r))
}

func formatProfit(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	// avoid "-0.00"
	if math.Abs(v) < 0.005 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatExpiration(sec int) string {
	if sec <= 0 {
		return "all"
	}
	return fmt.Sprintf("%ds", sec)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
