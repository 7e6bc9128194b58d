package report

import (
	"encoding/json"
	"io"

	"winrate/internal/stats"
)

// Summary is the machine-readable form of one analysis
type Summary struct {
	Run      Run             `json:"run"`
	Analysis *stats.Analysis `json:"analysis"`
}

// WriteJSON writes the summary as indented JSON
func WriteJSON(w io.Writer, a *stats.Analysis, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summary{Run: run, Analysis: a})
}
