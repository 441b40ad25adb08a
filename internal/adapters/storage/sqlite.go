// Package storage archives completed simulation runs in SQLite so
// past results stay queryable across sessions.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/icarofreire/bracketbot/internal/ports"
	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ ports.RunStore = (*SQLiteStore)(nil)

const schema = `
-- One row per completed run
CREATE TABLE IF NOT EXISTS runs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at     DATETIME NOT NULL,
    strategy       TEXT     NOT NULL,
    symbols        TEXT     NOT NULL,
    starting_power REAL     NOT NULL,
    final_equity   REAL     NOT NULL,
    steps          INTEGER  NOT NULL DEFAULT 0
);

-- Fill/rejection log, one row per event
CREATE TABLE IF NOT EXISTS fills (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step     INTEGER NOT NULL,
    group_id TEXT,
    symbol   TEXT    NOT NULL,
    side     TEXT    NOT NULL,
    trig     TEXT    NOT NULL,
    quantity REAL    NOT NULL,
    price    REAL    NOT NULL,
    rejected INTEGER NOT NULL DEFAULT 0,
    reason   TEXT
);

-- Equity curve samples, one row per step (plus the final snapshot)
CREATE TABLE IF NOT EXISTS equity_points (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step   INTEGER NOT NULL,
    equity REAL    NOT NULL,
    PRIMARY KEY (run_id, step)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_fills_run    ON fills(run_id);
`

// SQLiteStore implements ports.RunStore on a local SQLite file
// (pure Go driver, no CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the archive database at path and
// applies the schema. Use ":memory:" for an ephemeral archive.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun persists the run row plus its fill log and equity curve in a
// single transaction, and returns the new run's ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run ports.RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, strategy, symbols, starting_power, final_equity, steps)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Strategy, strings.Join(run.Symbols, ","),
		run.StartingPower, run.FinalEquity, run.Steps,
	)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.SaveRun: run id: %w", err)
	}

	fillStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills (run_id, step, group_id, symbol, side, trig, quantity, price, rejected, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveRun: prepare fills: %w", err)
	}
	defer fillStmt.Close()

	for _, f := range run.Fills {
		rejected := 0
		if f.Rejected {
			rejected = 1
		}
		if _, err := fillStmt.ExecContext(ctx,
			runID, f.Step, f.GroupID, f.Symbol, string(f.Side), string(f.Trigger),
			f.Quantity, f.Price, rejected, f.Reason,
		); err != nil {
			return 0, fmt.Errorf("storage.SaveRun: insert fill step %d: %w", f.Step, err)
		}
	}

	eqStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO equity_points (run_id, step, equity) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveRun: prepare equity: %w", err)
	}
	defer eqStmt.Close()

	for i, eq := range run.EquityCurve {
		if _, err := eqStmt.ExecContext(ctx, runID, i, eq); err != nil {
			return 0, fmt.Errorf("storage.SaveRun: insert equity point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return runID, nil
}

// GetRuns returns up to limit archived runs, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.strategy, r.symbols,
		       r.starting_power, r.final_equity, r.steps,
		       (SELECT COUNT(*) FROM fills f WHERE f.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []ports.RunSummary
	for rows.Next() {
		var rs ports.RunSummary
		var startedAt, symbols string
		if err := rows.Scan(
			&rs.ID, &startedAt, &rs.Strategy, &symbols,
			&rs.StartingPower, &rs.FinalEquity, &rs.Steps, &rs.Fills,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan row: %w", err)
		}
		rs.StartedAt = parseStoredTime(startedAt)
		if symbols != "" {
			rs.Symbols = strings.Split(symbols, ",")
		}
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// GetEquityCurve returns the stored equity samples of one run, in step
// order. Missing runs yield an empty slice, not an error.
func (s *SQLiteStore) GetEquityCurve(ctx context.Context, runID int64) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT equity FROM equity_points WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetEquityCurve: query: %w", err)
	}
	defer rows.Close()

	var curve []float64
	for rows.Next() {
		var eq float64
		if err := rows.Scan(&eq); err != nil {
			return nil, fmt.Errorf("storage.GetEquityCurve: scan row: %w", err)
		}
		curve = append(curve, eq)
	}
	return curve, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// parseStoredTime handles the driver's stored DATETIME formats.
func parseStoredTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
