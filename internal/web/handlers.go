package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"winrate/internal/report"
)

// HistoryEntry is one journal row as served by /api/history
type HistoryEntry struct {
	ID           string   `json:"id"`
	CreatedAt    string   `json:"created_at"`
	Files        []string `json:"files"`
	OTC          string   `json:"otc"`
	Expiration   int      `json:"expiration_sec"`
	Trades       int      `json:"trades"`
	WinRate      float64  `json:"win_rate"`
	Profit       float64  `json:"profit"`
	ProfitFactor string   `json:"profit_factor"`
	Currency     string   `json:"currency"`
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handleCharts renders the chart page
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.charts.Render(w, s.analysis); err != nil {
		s.log.Error("rendering charts", zap.Error(err))
		http.Error(w, "Failed to render charts", http.StatusInternalServerError)
	}
}

// handleSummary returns the analysis as JSON
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, s.analysis, s.run); err != nil {
		s.log.Error("encoding summary", zap.Error(err))
	}
}

// handleMarkdown returns the markdown report
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.Markdown(s.analysis, s.run)))
}

// handleHistory lists journal entries; ?limit=N, default 20
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if s.journal == nil {
		http.Error(w, "Journal is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.journal.List(r.Context(), limit)
	if err != nil {
		http.Error(w, "Failed to read journal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		pf := "inf"
		if !e.ProfitFactor.IsInf() {
			pf = strconv.FormatFloat(float64(e.ProfitFactor), 'f', 2, 64)
		}
		resp[i] = HistoryEntry{
			ID:           e.ID,
			CreatedAt:    e.CreatedAt.Format("2006-01-02 15:04:05"),
			Files:        e.Files,
			OTC:          e.OTC,
			Expiration:   e.Expiration,
			Trades:       e.Trades,
			WinRate:      e.WinRate,
			Profit:       e.Profit,
			ProfitFactor: pf,
			Currency:     e.Currency,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"runs": resp})
}
