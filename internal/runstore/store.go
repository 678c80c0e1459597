// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore keeps pipeline runs in SQLite.
//
// The default database is in memory and lives as long as the process; a
// file path keeps runs across restarts. All access goes through a single
// connection, which serializes writes.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pitchcrew/pkg/types"
)

// MemoryPath selects an in-memory database.
const MemoryPath = ":memory:"

const defaultListLimit = 20

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Store manages the run database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the run database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = MemoryPath
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// An in-memory database exists per connection, so there must be
	// exactly one and it must never be recycled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			idea TEXT NOT NULL,
			selected_name TEXT NOT NULL DEFAULT '',
			names TEXT NOT NULL DEFAULT '[]',
			research TEXT NOT NULL DEFAULT '',
			draft_pitch TEXT NOT NULL DEFAULT '',
			polished_pitch TEXT NOT NULL DEFAULT '',
			runs_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_events (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			event TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_events_run_id ON run_events(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_updated_at ON runs(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create stores a new, empty run for idea under a fresh ID.
func (s *Store) Create(ctx context.Context, idea string) (*types.PipelineRun, error) {
	now := s.now().UTC()
	run := &types.PipelineRun{
		ID:        uuid.NewString(),
		Idea:      strings.TrimSpace(idea),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Save inserts or replaces run, including its history.
func (s *Store) Save(ctx context.Context, run *types.PipelineRun) error {
	if run.ID == "" {
		return errors.New("saving run: empty id")
	}
	names, err := json.Marshal(nonNil(run.Names))
	if err != nil {
		return fmt.Errorf("encoding names: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = run.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, idea, selected_name, names, research, draft_pitch, polished_pitch, runs_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			idea = excluded.idea,
			selected_name = excluded.selected_name,
			names = excluded.names,
			research = excluded.research,
			draft_pitch = excluded.draft_pitch,
			polished_pitch = excluded.polished_pitch,
			runs_count = excluded.runs_count,
			updated_at = excluded.updated_at`,
		run.ID, run.Idea, run.SelectedName, string(names), run.Research, run.DraftPitch, run.PolishedPitch,
		run.RunsCount, formatTime(run.CreatedAt), formatTime(run.UpdatedAt),
	); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_events WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clearing history of %s: %w", run.ID, err)
	}
	for _, ev := range run.History {
		if err := insertEvent(ctx, tx, run.ID, ev); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendEvent adds ev to the history of run id.
func (s *Store) AppendEvent(ctx context.Context, id string, ev types.StageEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE runs SET updated_at = ? WHERE id = ?`, formatTime(s.now().UTC()), id)
	if err != nil {
		return fmt.Errorf("touching run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("appending event to %s: %w", id, ErrNotFound)
	}
	if err := insertEvent(ctx, tx, id, ev); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEvent(ctx context.Context, tx *sql.Tx, id string, ev types.StageEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO run_events (run_id, event) VALUES (?, ?)`, id, string(data)); err != nil {
		return fmt.Errorf("inserting event for %s: %w", id, err)
	}
	return nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*types.PipelineRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, idea, selected_name, names, research, draft_pitch, polished_pitch, runs_count, created_at, updated_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}

	history, err := s.history(ctx, id)
	if err != nil {
		return nil, err
	}
	run.History = history
	return run, nil
}

func (s *Store) history(ctx context.Context, id string) ([]types.StageEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event FROM run_events WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s: %w", id, err)
	}
	defer rows.Close()

	var events []types.StageEvent
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		var ev types.StageEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// List returns up to limit runs, most recently updated first. History is
// not loaded. A non-positive limit selects the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]*types.PipelineRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idea, selected_name, names, research, draft_pitch, polished_pitch, runs_count, created_at, updated_at
		 FROM runs ORDER BY updated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes run id and its history.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ExportYAML writes up to limit runs, with their history, to w as a YAML
// document.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	listed, err := s.List(ctx, limit)
	if err != nil {
		return err
	}
	runs := make([]*types.PipelineRun, 0, len(listed))
	for _, r := range listed {
		full, err := s.Get(ctx, r.ID)
		if err != nil {
			return err
		}
		runs = append(runs, full)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Runs []*types.PipelineRun `yaml:"runs"`
	}{Runs: runs}); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return enc.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*types.PipelineRun, error) {
	var (
		run              types.PipelineRun
		names            string
		created, updated string
	)
	if err := sc.Scan(&run.ID, &run.Idea, &run.SelectedName, &names, &run.Research,
		&run.DraftPitch, &run.PolishedPitch, &run.RunsCount, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(names), &run.Names); err != nil {
		return nil, fmt.Errorf("decoding names of %s: %w", run.ID, err)
	}
	if len(run.Names) == 0 {
		run.Names = nil
	}
	var err error
	if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", run.ID, err)
	}
	if run.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", run.ID, err)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
