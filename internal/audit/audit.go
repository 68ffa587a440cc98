// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package audit keeps a local SQLite history of runs and their per-page
// results.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"roster-stamp/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	roster     TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	join_mode  TEXT NOT NULL,
	pages      INTEGER NOT NULL,
	matched    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS page_results (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	pdf_name     TEXT NOT NULL,
	page_index   INTEGER NOT NULL,
	matched_name TEXT,
	method       TEXT NOT NULL,
	score        REAL,
	tour_id      TEXT,
	weekday      TEXT,
	shift_time   TEXT,
	error        TEXT
);
CREATE INDEX IF NOT EXISTS idx_page_results_run ON page_results(run_id);
`

// RunMeta describes a run beyond what the report carries
type RunMeta struct {
	StartedAt time.Time
	Roster    string
}

// Store records runs in a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// One writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores one run and all of its page results in a single transaction
func (s *Store) Record(ctx context.Context, runID string, meta RunMeta, rep *report.Report) error {
	if rep == nil {
		return fmt.Errorf("nothing to record")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, roster, strategy, join_mode, pages, matched) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, meta.StartedAt.UTC().Format(time.RFC3339), meta.Roster, rep.Strategy, rep.JoinMode,
		rep.Summary.Pages, rep.Summary.Matched,
	); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO page_results (run_id, pdf_name, page_index, matched_name, method, score, tour_id, weekday, shift_time, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rep.Pages {
		var score sql.NullFloat64
		if p.MatchScore != nil {
			score = sql.NullFloat64{Float64: *p.MatchScore, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, p.PDFName, p.PageIndex, nullString(p.MatchedName), p.MatchMethod, score,
			nullString(p.TourID), nullString(p.WeekdayLabel), nullString(p.ShiftTime), nullString(p.Error),
		); err != nil {
			return fmt.Errorf("failed to record page %d of %s: %w", p.PageIndex, p.PDFName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}
	return nil
}

// RunSummary is one row of the runs table
type RunSummary struct {
	ID        string
	StartedAt string
	Roster    string
	Strategy  string
	JoinMode  string
	Pages     int
	Matched   int
}

// Runs lists recorded runs, oldest first
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, roster, strategy, join_mode, pages, matched FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Roster, &r.Strategy, &r.JoinMode, &r.Pages, &r.Matched); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PageCount returns how many page results were stored for runID
func (s *Store) PageCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM page_results WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
