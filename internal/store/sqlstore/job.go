package sqlstore

import (
	"context"
	"database/sql"

	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// CreateJob inserts a new job row.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	query := s.rebind(`
		INSERT INTO jobs (id, company_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}

	_, err := s.getExecutor(tx).ExecContext(ctx, query,
		job.ID,
		job.CompanyID,
		job.StartTime.UTC(),
		job.EndTime.UTC(),
		job.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "insert job %s", job.ID)
	}
	return nil
}

func (s *Store) GetJobByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Job, error) {
	query := s.rebind("SELECT id, company_id, start_time, end_time, created_at FROM jobs WHERE id = ?")

	var job store.Job

	err := s.getExecutor(tx).QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.CompanyID,
		&job.StartTime,
		&job.EndTime,
		&job.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select job %s", id)
	}

	job.StartTime = job.StartTime.UTC()
	job.EndTime = job.EndTime.UTC()
	job.CreatedAt = job.CreatedAt.UTC()
	return &job, nil
}

// DeleteJob removes a job row. Shifts must already be gone or be removed by the
// foreign key cascade.
func (s *Store) DeleteJob(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	res, err := s.getExecutor(tx).ExecContext(ctx, s.rebind("DELETE FROM jobs WHERE id = ?"), id)
	if err != nil {
		return errors.Wrapf(err, "delete job %s", id)
	}
	return expectAffected(res, store.ErrNotFound)
}

// expectAffected maps a zero-row result to the given sentinel.
func expectAffected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
