package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookwish/internal/domain"
)

func (db *DB) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `INSERT OR IGNORE INTO jobs (id, type, status, source_id, payload, created_at, updated_at)
		VALUES (:id, :type, :status, :source_id, :payload, :created_at, :updated_at)`

	_, err := db.NamedExecContext(ctx, query, job)
	return err
}

func (db *DB) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT id, type, status, source_id, payload, error, created_at, updated_at FROM jobs WHERE id = ?`

	job := &domain.Job{}
	err := db.GetContext(ctx, job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus) error {
	query := `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (db *DB) UpdateJobError(ctx context.Context, id string, errorMsg string) error {
	query := `UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, domain.JobStatusFailed, errorMsg, time.Now(), id)
	return err
}

func (db *DB) ListJobs(ctx context.Context, limit int) ([]*domain.Job, error) {
	query := `SELECT id, type, status, source_id, payload, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?`

	var jobs []*domain.Job
	err := db.SelectContext(ctx, &jobs, query, limit)
	return jobs, err
}
