package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const createAnalysesTable = `CREATE TABLE IF NOT EXISTS analyses (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	job_title  TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	record     JSONB NOT NULL
)`

// PostgresStore keeps analyses in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it, and ensures the analyses table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (s *PostgresStore, err error) {
	if databaseURL == "" {
		err = errors.New("database url is required")
		return s, err
	}

	var pool *pgxpool.Pool
	pool, err = pgxpool.New(ctx, databaseURL)
	if err != nil {
		err = errors.Wrap(err, "failed to connect to database")
		return s, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		err = errors.Wrap(err, "failed to ping database")
		return s, err
	}

	_, err = pool.Exec(ctx, createAnalysesTable)
	if err != nil {
		pool.Close()
		err = errors.Wrap(err, "failed to create analyses table")
		return s, err
	}

	s = &PostgresStore{pool: pool}
	return s, err
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Append inserts analysis. An existing id is reported as ErrExists.
func (s *PostgresStore) Append(ctx context.Context, analysis Analysis) (err error) {
	err = analysis.Validate()
	if err != nil {
		return err
	}

	var record []byte
	record, err = json.Marshal(analysis)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal analysis")
		return err
	}

	tag, execErr := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, created_at, job_title, company, record)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		analysis.ID, analysis.Date, analysis.JobTitle, analysis.Company, record,
	)
	if execErr != nil {
		err = errors.Wrapf(execErr, "failed to insert analysis %q", analysis.ID)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = errors.Wrapf(ErrExists, "analysis %q", analysis.ID)
		return err
	}

	return err
}

// List returns every stored analysis, newest first.
func (s *PostgresStore) List(ctx context.Context) (analyses []Analysis, err error) {
	analyses = make([]Analysis, 0)

	rows, queryErr := s.pool.Query(ctx,
		`SELECT record FROM analyses ORDER BY seq DESC`,
	)
	if queryErr != nil {
		err = errors.Wrap(queryErr, "failed to list analyses")
		return analyses, err
	}
	defer rows.Close()

	for rows.Next() {
		var record []byte
		err = rows.Scan(&record)
		if err != nil {
			err = errors.Wrap(err, "failed to scan analysis")
			return analyses, err
		}

		var analysis Analysis
		err = json.Unmarshal(record, &analysis)
		if err != nil {
			err = errors.Wrap(err, "failed to decode stored analysis")
			return analyses, err
		}
		analyses = append(analyses, analysis)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to read analyses")
		return analyses, err
	}

	return analyses, err
}

// Delete removes the analysis with the given id.
func (s *PostgresStore) Delete(ctx context.Context, id string) (err error) {
	tag, execErr := s.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if execErr != nil {
		err = errors.Wrapf(execErr, "failed to delete analysis %q", id)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = errors.Wrapf(ErrNotFound, "analysis %q", id)
		return err
	}

	return err
}
