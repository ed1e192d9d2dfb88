package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Load outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// LoadRecord is one entry of the load history.
type LoadRecord struct {
	ID      string    `json:"id"`
	Origin  string    `json:"origin"`
	Locator string    `json:"locator,omitempty"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// History records load attempts.
type History interface {
	Record(r LoadRecord) error
	Recent(limit int) ([]LoadRecord, error)
}

var (
	_ History = (*SQLite)(nil)
	_ History = (*MemoryHistory)(nil)
)

func stamp(r *LoadRecord) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.At.IsZero() {
		r.At = time.Now().UTC()
	}
}

// Record appends r, filling in its ID and time when missing.
func (db *SQLite) Record(r LoadRecord) error {
	stamp(&r)
	_, err := db.conn.Exec(`
		INSERT INTO loads (id, origin, locator, outcome, error, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Origin, r.Locator, r.Outcome, r.Error, r.At)
	if err != nil {
		return fmt.Errorf("cache: record load: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (db *SQLite) Recent(limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, origin, locator, outcome, error, at
		FROM loads
		ORDER BY at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("cache: recent loads: %w", err)
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var r LoadRecord
		if err := rows.Scan(&r.ID, &r.Origin, &r.Locator, &r.Outcome, &r.Error, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MemoryHistory keeps the most recent records in memory.
type MemoryHistory struct {
	mu      sync.Mutex
	records []LoadRecord
	max     int
}

// NewMemoryHistory keeps up to max records.
func NewMemoryHistory(max int) *MemoryHistory {
	if max <= 0 {
		max = 100
	}
	return &MemoryHistory{max: max}
}

func (h *MemoryHistory) Record(r LoadRecord) error {
	stamp(&r)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if len(h.records) > h.max {
		h.records = h.records[len(h.records)-h.max:]
	}
	return nil
}

func (h *MemoryHistory) Recent(limit int) ([]LoadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	out := make([]LoadRecord, 0, min(limit, len(h.records)))
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}
