package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"sunweather/internal/suvi"
)

// Run states persisted at terminal transitions.
const (
	StateRunning = "running"
	StateDone    = "done"
	StateFailed  = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	State      string
	OutputPath string
	Error      string
}

// FrameRecord is one downloaded observation.
type FrameRecord struct {
	Band       suvi.Band
	ObservedAt time.Time
	Path       string
	Bytes      int64
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to a manifest database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// StartRun records a new running pipeline invocation.
func (s *Store) StartRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, state) VALUES (?, ?, ?)",
		runID, time.Now().UTC().Format(time.RFC3339Nano), StateRunning)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordSequence stores every frame of a fetched band sequence.
func (s *Store) RecordSequence(ctx context.Context, runID string, seq suvi.Sequence) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin frames tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO frames (run_id, band, observed_at, path, bytes) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, img := range seq.Images {
		var size int64
		if info, statErr := os.Stat(img.Path); statErr == nil {
			size = info.Size()
		}
		if _, err := stmt.ExecContext(ctx,
			runID, string(img.Band), img.Timestamp.UTC().Format(time.RFC3339), img.Path, size); err != nil {
			return fmt.Errorf("insert frame: %w", err)
		}
	}
	return tx.Commit()
}

// FinishRun records the terminal state of a run. errMsg is empty on success.
func (s *Store) FinishRun(ctx context.Context, runID, state, outputPath, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, state = ?, output_path = ?, error = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), state, outputPath, errMsg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, state, output_path, error FROM runs WHERE id = ?", runID)
	return scanRun(row)
}

// ListRuns returns every recorded run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, state, output_path, error FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Frames returns the recorded frames for a run ordered by band then time.
func (s *Store) Frames(ctx context.Context, runID string) ([]FrameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT band, observed_at, path, bytes FROM frames WHERE run_id = ? ORDER BY band, observed_at", runID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRecord
	for rows.Next() {
		var band, observed, path string
		var size int64
		if err := rows.Scan(&band, &observed, &path, &size); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, observed)
		if err != nil {
			return nil, fmt.Errorf("parse frame time: %w", err)
		}
		frames = append(frames, FrameRecord{Band: suvi.Band(band), ObservedAt: ts, Path: path, Bytes: size})
	}
	return frames, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started string
	var finished, output, errMsg sql.NullString
	if err := row.Scan(&run.ID, &started, &finished, &run.State, &output, &errMsg); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return nil, fmt.Errorf("parse run start: %w", err)
	}
	run.StartedAt = ts
	if finished.Valid && finished.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			run.FinishedAt = ts
		}
	}
	run.OutputPath = output.String
	run.Error = errMsg.String
	return &run, nil
}
