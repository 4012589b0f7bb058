package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// Transactor opens transactions against the backing database.
type Transactor interface {
	BeginTx(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
}

// JobStore handles the persistence of Job records.
type JobStore interface {
	// CreateJob inserts a new job row. Shifts are written separately.
	CreateJob(ctx context.Context, tx DBTransaction, job *Job) error

	// GetJobByID returns a job by its ID, or ErrNotFound.
	GetJobByID(ctx context.Context, tx DBTransaction, id uuid.UUID) (*Job, error)

	// DeleteJob removes the job row. Returns ErrNotFound if nothing was deleted.
	DeleteJob(ctx context.Context, tx DBTransaction, id uuid.UUID) error
}

// ShiftStore handles the persistence of Shift records.
type ShiftStore interface {
	// CreateShifts inserts all given shifts.
	CreateShifts(ctx context.Context, tx DBTransaction, shifts []Shift) error

	// GetShiftByID returns a shift by its ID, or ErrNotFound.
	GetShiftByID(ctx context.Context, tx DBTransaction, id uuid.UUID) (*Shift, error)

	// ListShiftsByJob returns the shifts of a job ordered by start time.
	// An unknown job yields an empty slice.
	ListShiftsByJob(ctx context.Context, tx DBTransaction, jobID uuid.UUID) ([]Shift, error)

	// ListShiftsByTalent returns every shift currently assigned to the talent.
	ListShiftsByTalent(ctx context.Context, tx DBTransaction, talentID uuid.UUID) ([]Shift, error)

	// UpdateShiftTalent writes shift.TalentID if shift.Version still matches the stored
	// version, then advances shift.Version. A mismatch returns ErrStaleVersion.
	UpdateShiftTalent(ctx context.Context, tx DBTransaction, shift *Shift) error

	// DeleteShift removes the shift if its stored version equals version.
	DeleteShift(ctx context.Context, tx DBTransaction, id uuid.UUID, version int64) error

	// DeleteShiftsByJob removes every shift of the job and returns how many were removed.
	DeleteShiftsByJob(ctx context.Context, tx DBTransaction, jobID uuid.UUID) (int64, error)

	// ReassignTalent rewrites the talent of every shift held by from to to in a single
	// statement and returns the number of shifts touched.
	ReassignTalent(ctx context.Context, tx DBTransaction, from, to uuid.UUID) (int64, error)
}
