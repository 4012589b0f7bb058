package sqlstore

import (
	"context"
	"database/sql"

	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const shiftColumns = "id, job_id, talent_id, start_time, end_time, version, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShift(row rowScanner) (store.Shift, error) {
	var sh store.Shift
	err := row.Scan(
		&sh.ID, &sh.JobID, &sh.TalentID,
		&sh.StartTime, &sh.EndTime, &sh.Version,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return store.Shift{}, err
	}

	sh.StartTime = sh.StartTime.UTC()
	sh.EndTime = sh.EndTime.UTC()
	sh.CreatedAt = sh.CreatedAt.UTC()
	sh.UpdatedAt = sh.UpdatedAt.UTC()
	return sh, nil
}

// CreateShifts inserts every shift with version 0.
func (s *Store) CreateShifts(ctx context.Context, tx store.DBTransaction, shifts []store.Shift) error {
	query := s.rebind(`
		INSERT INTO shifts (id, job_id, talent_id, start_time, end_time, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`)

	executor := s.getExecutor(tx)
	now := s.now()

	for i := range shifts {
		sh := &shifts[i]
		sh.Version = 0
		sh.CreatedAt = now
		sh.UpdatedAt = now

		_, err := executor.ExecContext(ctx, query,
			sh.ID,
			sh.JobID,
			sh.TalentID,
			sh.StartTime.UTC(),
			sh.EndTime.UTC(),
			sh.CreatedAt,
			sh.UpdatedAt,
		)
		if err != nil {
			return errors.Wrapf(err, "insert shift %s", sh.ID)
		}
	}
	return nil
}

func (s *Store) GetShiftByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Shift, error) {
	query := s.rebind("SELECT " + shiftColumns + " FROM shifts WHERE id = ?")

	sh, err := scanShift(s.getExecutor(tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select shift %s", id)
	}
	return &sh, nil
}

func (s *Store) ListShiftsByJob(ctx context.Context, tx store.DBTransaction, jobID uuid.UUID) ([]store.Shift, error) {
	query := s.rebind("SELECT " + shiftColumns + " FROM shifts WHERE job_id = ? ORDER BY start_time ASC")
	return s.listShifts(ctx, tx, query, jobID)
}

func (s *Store) ListShiftsByTalent(ctx context.Context, tx store.DBTransaction, talentID uuid.UUID) ([]store.Shift, error) {
	query := s.rebind("SELECT " + shiftColumns + " FROM shifts WHERE talent_id = ? ORDER BY start_time ASC")
	return s.listShifts(ctx, tx, query, talentID)
}

func (s *Store) listShifts(ctx context.Context, tx store.DBTransaction, query string, arg uuid.UUID) ([]store.Shift, error) {
	rows, err := s.getExecutor(tx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "list shifts")
	}
	defer rows.Close()

	shifts := []store.Shift{}
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shift")
		}
		shifts = append(shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list shifts rows")
	}

	return shifts, nil
}

// UpdateShiftTalent performs a compare-and-swap on the shift's version.
func (s *Store) UpdateShiftTalent(ctx context.Context, tx store.DBTransaction, shift *store.Shift) error {
	query := s.rebind(`
		UPDATE shifts
		SET talent_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`)

	now := s.now()
	res, err := s.getExecutor(tx).ExecContext(ctx, query, shift.TalentID, now, shift.ID, shift.Version)
	if err != nil {
		return errors.Wrapf(err, "update shift %s", shift.ID)
	}
	if err := expectAffected(res, store.ErrStaleVersion); err != nil {
		return err
	}

	shift.Version++
	shift.UpdatedAt = now
	return nil
}

func (s *Store) DeleteShift(ctx context.Context, tx store.DBTransaction, id uuid.UUID, version int64) error {
	res, err := s.getExecutor(tx).ExecContext(ctx, s.rebind("DELETE FROM shifts WHERE id = ? AND version = ?"), id, version)
	if err != nil {
		return errors.Wrapf(err, "delete shift %s", id)
	}
	return expectAffected(res, store.ErrStaleVersion)
}

func (s *Store) DeleteShiftsByJob(ctx context.Context, tx store.DBTransaction, jobID uuid.UUID) (int64, error) {
	res, err := s.getExecutor(tx).ExecContext(ctx, s.rebind("DELETE FROM shifts WHERE job_id = ?"), jobID)
	if err != nil {
		return 0, errors.Wrapf(err, "delete shifts of job %s", jobID)
	}
	return res.RowsAffected()
}

// ReassignTalent moves every shift held by one talent to another in one statement.
func (s *Store) ReassignTalent(ctx context.Context, tx store.DBTransaction, from, to uuid.UUID) (int64, error) {
	query := s.rebind(`
		UPDATE shifts
		SET talent_id = ?, version = version + 1, updated_at = ?
		WHERE talent_id = ?
	`)

	res, err := s.getExecutor(tx).ExecContext(ctx, query, to, s.now(), from)
	if err != nil {
		return 0, errors.Wrapf(err, "reassign shifts of talent %s", from)
	}
	return res.RowsAffected()
}

// CountShifts returns the number of shifts and how many of them have no talent.
func (s *Store) CountShifts(ctx context.Context) (total, unassigned int64, err error) {
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(*) - COUNT(talent_id) FROM shifts")
	if err := row.Scan(&total, &unassigned); err != nil {
		return 0, 0, errors.Wrap(err, "count shifts")
	}
	return total, unassigned, nil
}
