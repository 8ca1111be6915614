package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"aasbench/internal/regression"
)

// PostgresStore implements Store on a shared Postgres database, for CI
// deployments where several runners read the same baseline. Writes are
// still expected to be serialized by the scheduler; the token check
// catches the case where they are not.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping baseline database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate baseline database: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS baseline_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		run_id TEXT NOT NULL,
		token TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS baseline_entries (
		implementation TEXT NOT NULL,
		dataset TEXT NOT NULL,
		operation_id TEXT NOT NULL,
		mean_ns DOUBLE PRECISION NOT NULL,
		stddev_ns DOUBLE PRECISION NOT NULL,
		sample_count BIGINT NOT NULL,
		reduced_confidence BOOLEAN NOT NULL DEFAULT FALSE,
		run_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (implementation, dataset, operation_id)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Load reads the full baseline and its concurrency token.
func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
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
func (s *PostgresStore) Replace(ctx context.Context, runID string, entries map[regression.Key]regression.Sample, expectedToken string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT token FROM baseline_meta WHERE id = 1 FOR UPDATE`).Scan(&stored)
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			k.Implementation, k.Dataset, k.OperationID,
			v.MeanNs, v.StddevNs, v.SampleCount, v.ReducedConfidence, runAt); err != nil {
			return err
		}
	}

	token := Token(runID, entries)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO baseline_meta (id, run_id, token, updated_at) VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET run_id = EXCLUDED.run_id, token = EXCLUDED.token, updated_at = EXCLUDED.updated_at`,
		runID, token, now); err != nil {
		return err
	}
	return tx.Commit()
}
