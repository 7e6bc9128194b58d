// Package journal keeps a SQLite history of analyze runs.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"winrate/internal/report"
	"winrate/internal/stats"
)

// Entry is one recorded analyze run
type Entry struct {
	ID           string
	CreatedAt    time.Time
	Files        []string
	OTC          string
	Expiration   int
	From         *time.Time
	To           *time.Time
	Trades       int
	WinRate      float64
	Profit       float64
	ProfitFactor stats.Ratio
	Currency     string
}

// NewEntry summarises an analysis for the journal
func NewEntry(a *stats.Analysis, run report.Run) Entry {
	return Entry{
		CreatedAt:    run.GeneratedAt,
		Files:        run.FileNames(),
		OTC:          run.OTC,
		Expiration:   run.Expiration,
		From:         run.From,
		To:           run.To,
		Trades:       a.Metrics.TotalTrades,
		WinRate:      stats.Round2(a.Metrics.WinRate),
		Profit:       stats.Round2(a.Metrics.TotalProfit),
		ProfitFactor: a.Metrics.ProfitFactor,
		Currency:     a.Metrics.Currency,
	}
}

// Store persists entries in a SQLite database
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	files TEXT NOT NULL,
	otc TEXT NOT NULL,
	expiration INTEGER NOT NULL,
	period_from INTEGER,
	period_to INTEGER,
	trades INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit REAL NOT NULL,
	profit_factor REAL,
	currency TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Open opens or creates the journal at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records an entry, assigning an id when it has none
func (s *Store) Save(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	files, err := json.Marshal(e.Files)
	if err != nil {
		return e, fmt.Errorf("encoding files: %w", err)
	}

	// an unbounded profit factor is stored as NULL
	var pf sql.NullFloat64
	if f := float64(e.ProfitFactor); !math.IsInf(f, 0) && !math.IsNaN(f) {
		pf = sql.NullFloat64{Float64: f, Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, files, otc, expiration, period_from, period_to,
			trades, win_rate, profit, profit_factor, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixNano(), string(files), e.OTC, e.Expiration,
		unixOrNull(e.From), unixOrNull(e.To),
		e.Trades, e.WinRate, e.Profit, pf, e.Currency)
	if err != nil {
		return e, fmt.Errorf("saving run: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, created_at, files, otc, expiration, period_from, period_to,
			trades, win_rate, profit, profit_factor, currency
		FROM runs ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			created  int64
			files    string
			from, to sql.NullInt64
			pf       sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &created, &files, &e.OTC, &e.Expiration, &from, &to,
			&e.Trades, &e.WinRate, &e.Profit, &pf, &e.Currency); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		if err := json.Unmarshal([]byte(files), &e.Files); err != nil {
			return nil, fmt.Errorf("decoding files of run %s: %w", e.ID, err)
		}
		e.From = timeOrNil(from)
		e.To = timeOrNil(to)
		e.ProfitFactor = stats.Ratio(math.Inf(1))
		if pf.Valid {
			e.ProfitFactor = stats.Ratio(pf.Float64)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func unixOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
