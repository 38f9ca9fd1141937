package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Schema creates the job and result tables
const Schema = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT UNIQUE NOT NULL,
	url          TEXT NOT NULL,
	scraper_type TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scraped_data (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     INTEGER NOT NULL REFERENCES scrape_jobs(id),
	data       TEXT NOT NULL,
	scraped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scrape_jobs_status ON scrape_jobs(status);
CREATE INDEX IF NOT EXISTS idx_scraped_data_job_id ON scraped_data(job_id);
`

const jobColumns = `id, name, url, scraper_type, status, created_at`

// SQLiteStore keeps jobs in a local SQLite database
type SQLiteStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger := log.Named("sqlite")
	logger.Info("Connected to database", zap.String("path", path))

	return &SQLiteStore{db: db, log: logger}, nil
}

// CreateJob inserts job and sets its ID
func (s *SQLiteStore) CreateJob(ctx context.Context, job *models.Job) error {
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_jobs (name, url, scraper_type, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		job.Name, job.SourceURL, job.SourceType, job.Status, job.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateName, job.Name)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read job id: %w", err)
	}
	job.ID = id

	s.log.Info("Scrape job created", zap.Int64("job_id", id), zap.String("name", job.Name))
	return nil
}

// GetJob retrieves a job by ID
func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	err := s.db.GetContext(ctx, &job, `SELECT `+jobColumns+` FROM scrape_jobs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{JobID: id}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (s *SQLiteStore) ListJobs(ctx context.Context, status models.JobStatus) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM scrape_jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var jobs []*models.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	return jobs, nil
}

// SetJobStatus updates the status of a job
func (s *SQLiteStore) SetJobStatus(ctx context.Context, id int64, status models.JobStatus) error {
	if err := validStatus(status); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE scrape_jobs SET status = ? WHERE id = ?`, status, id)
	if err := execRequireRows(res, err, &NotFoundError{JobID: id}); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	s.log.Debug("Job status updated", zap.Int64("job_id", id), zap.String("status", string(status)))
	return nil
}

// PutJobResult inserts the result blob and marks the job completed in one transaction
func (s *SQLiteStore) PutJobResult(ctx context.Context, id int64, data string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE scrape_jobs SET status = ? WHERE id = ?`, models.JobStatusCompleted, id)
	if err := execRequireRows(res, err, &NotFoundError{JobID: id}); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scraped_data (job_id, data, scraped_at) VALUES (?, ?, ?)`,
		id, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert scraped data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job result: %w", err)
	}

	s.log.Info("Data inserted for job", zap.Int64("job_id", id), zap.Int("bytes", len(data)))
	return nil
}

// GetJobResults returns every stored result of a job, newest first
func (s *SQLiteStore) GetJobResults(ctx context.Context, id int64) ([]models.JobResult, error) {
	var results []models.JobResult
	err := s.db.SelectContext(ctx, &results,
		`SELECT id, job_id, data, scraped_at FROM scraped_data WHERE job_id = ? ORDER BY scraped_at DESC, id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job results: %w", err)
	}
	return results, nil
}

// DeleteJob removes a job and its results
func (s *SQLiteStore) DeleteJob(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scraped_data WHERE job_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job data: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM scrape_jobs WHERE id = ?`, id)
	if err := execRequireRows(res, err, &NotFoundError{JobID: id}); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.log.Info("Job and its data deleted", zap.Int64("job_id", id))
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// execRequireRows returns err if non-nil, or notFoundErr if no row was affected
func execRequireRows(result sql.Result, err, notFoundErr error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
