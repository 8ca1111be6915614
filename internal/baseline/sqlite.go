package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"aasbench/internal/regression"
)

// SQLiteStore implements Store on a local SQLite file. This is the
// default backend for single-runner deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the baseline database at path and
// applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping baseline database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate baseline database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS baseline_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		run_id TEXT NOT NULL,
		token TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS baseline_entries (
		implementation TEXT NOT NULL,
		dataset TEXT NOT NULL,
		operation_id TEXT NOT NULL,
		mean_ns REAL NOT NULL,
		stddev_ns REAL NOT NULL,
		sample_count INTEGER NOT NULL,
		reduced_confidence INTEGER NOT NULL DEFAULT 0,
		run_at DATETIME NOT NULL,
		PRIMARY KEY (implementation, dataset, operation_id)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full baseline and its concurrency token.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Entries: map[regression.Key]regression.Sample{}}

	row := s.db.QueryRowContext(ctx, `SELECT run_id, token FROM baseline_meta WHERE id = 1`)
	if err := row.Scan(&snap.RunID, &snap.Token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, nil
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT implementation, dataset, operation_id,
		       mean_ns, stddev_ns, sample_count, reduced_confidence, run_at
		FROM baseline_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k regression.Key
		var v regression.Sample
		if err := rows.Scan(&k.Implementation, &k.Dataset, &k.OperationID,
			&v.MeanNs, &v.StddevNs, &v.SampleCount, &v.ReducedConfidence, &v.RunAt); err != nil {
			return nil, err
		}
		snap.Entries[k] = v
	}
	return snap, rows.Err()
}

// Replace swaps the baseline under the optimistic concurrency check.
func (s *SQLiteStore) Replace(ctx context.Context, runID string, entries map[regression.Key]regression.Sample, expectedToken string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT token FROM baseline_meta WHERE id = 1`).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if stored != expectedToken {
		return &ConflictError{Expected: expectedToken, Actual: stored}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM baseline_entries`); err != nil {
		return err
	}
	now := time.Now().UTC()
	for k, v := range entries {
		runAt := v.RunAt
		if runAt.IsZero() {
			runAt = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO baseline_entries
			(implementation, dataset, operation_id, mean_ns, stddev_ns, sample_count, reduced_confidence, run_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			k.Implementation, k.Dataset, k.OperationID,
			v.MeanNs, v.StddevNs, v.SampleCount, v.ReducedConfidence, runAt); err != nil {
			return err
		}
	}

	token := Token(runID, entries)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO baseline_meta (id, run_id, token, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET run_id = excluded.run_id, token = excluded.token, updated_at = excluded.updated_at`,
		runID, token, now); err != nil {
		return err
	}
	return tx.Commit()
}
