package batch

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// History records one row per evaluated frame, so a long batch run can be
// audited after the fact. Optional: a Job with no HistoryDB runs without
// one (see NewHistory).
type History struct {
	db *sql.DB
}

// NewHistory opens (creating if absent) a sqlite database at path and
// ensures its schema exists. modernc.org/sqlite is a pure-Go driver, so the
// CLI binary stays cgo-free.
func NewHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("batch: open history db %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS frames (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	image      TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("batch: init history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record inserts one frame's outcome. frameErr is nil for a successful
// frame.
func (h *History) Record(image string, started, finished time.Time, frameErr error) error {
	if h == nil || h.db == nil {
		return nil
	}
	status := "ok"
	var errText sql.NullString
	if frameErr != nil {
		status = "failed"
		errText = sql.NullString{String: frameErr.Error(), Valid: true}
	}
	_, err := h.db.Exec(
		`INSERT INTO frames (image, started_at, finished_at, status, error) VALUES (?, ?, ?, ?, ?)`,
		image, started.UTC().Format(time.RFC3339Nano), finished.UTC().Format(time.RFC3339Nano), status, errText,
	)
	return err
}
