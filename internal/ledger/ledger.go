// Package ledger records every replicate of a run in a SQLite database so a
// simulated dataset can be traced back to its command, seed and tree.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"predsim/internal/replicate"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	pfile       TEXT NOT NULL,
	tfile       TEXT NOT NULL,
	seq_len     INTEGER NOT NULL,
	gamma_cats  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT
);
CREATE TABLE IF NOT EXISTS replicates (
	run_id     TEXT NOT NULL REFERENCES runs(run_id),
	idx        INTEGER NOT NULL,
	tree_label TEXT,
	tree       TEXT NOT NULL,
	seed       TEXT,
	model      TEXT NOT NULL,
	command    TEXT NOT NULL,
	params     TEXT NOT NULL,
	ntax       INTEGER NOT NULL,
	nchar      INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Run describes one predsim invocation.
type Run struct {
	ID        string
	PFile     string
	TFile     string
	SeqLen    int
	GammaCats int
}

// Store is an open ledger database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// BeginRun inserts the run row.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, pfile, tfile, seq_len, gamma_cats) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, now(), r.PFile, r.TFile, r.SeqLen, r.GammaCats)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Append stores one replicate of runID.
func (s *Store) Append(ctx context.Context, runID string, rec replicate.Record) error {
	p, err := json.Marshal(rec.Params)
	if err != nil {
		return err
	}
	var seed any
	if rec.Seed != "" {
		seed = rec.Seed
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO replicates (run_id, idx, tree_label, tree, seed, model, command, params, ntax, nchar)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Index+1, rec.Label, rec.Tree, seed, rec.Params.Model(), rec.Command, string(p),
		rec.Alignment.NTax(), rec.Alignment.NChar())
	if err != nil {
		return fmt.Errorf("failed to record replicate %d: %w", rec.Index+1, err)
	}
	return nil
}

// FinishRun marks runID as done, or failed when runErr is non-nil.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status, msg := "done", any(nil)
	if runErr != nil {
		status, msg = "failed", runErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE run_id = ?`,
		now(), status, msg, runID)
	return err
}

// Entry is one stored replicate.
type Entry struct {
	Index   int
	Label   string
	Seed    string
	Model   string
	Command string
	Tree    string
}

// Replicates returns the stored replicates of runID in input order.
func (s *Store) Replicates(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, COALESCE(tree_label, ''), COALESCE(seed, ''), model, command, tree
		 FROM replicates WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Index, &e.Label, &e.Seed, &e.Model, &e.Command, &e.Tree); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Status returns the status column of runID.
func (s *Store) Status(ctx context.Context, runID string) (string, error) {
	var st string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM runs WHERE run_id = ?`, runID).Scan(&st)
	return st, err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
