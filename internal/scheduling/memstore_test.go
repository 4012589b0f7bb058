package scheduling

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"shiftplane/internal/store"

	"github.com/google/uuid"
)

// memStore is an in-memory, transactional stand-in for the SQL store.
// Writes apply immediately; Rollback before Commit restores the snapshot
// taken at BeginTx.
type memStore struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]store.Job
	shifts map[uuid.UUID]store.Shift

	// Failure hooks, keyed by method name.
	fail     map[string]error
	beginErr error

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		jobs:   map[uuid.UUID]store.Job{},
		shifts: map[uuid.UUID]store.Shift{},
		fail:   map[string]error{},
	}
}

type memTx struct {
	s      *memStore
	jobs   map[uuid.UUID]store.Job
	shifts map[uuid.UUID]store.Shift
	done   bool
}

func (t *memTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *memTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.s.mu.Lock()
	t.s.commits++
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.jobs = t.jobs
	t.s.shifts = t.shifts
	t.s.rollbacks++
	return nil
}

func (s *memStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s, jobs: map[uuid.UUID]store.Job{}, shifts: map[uuid.UUID]store.Shift{}}
	for k, v := range s.jobs {
		tx.jobs[k] = v
	}
	for k, v := range s.shifts {
		tx.shifts[k] = v
	}
	return tx, nil
}

func (s *memStore) Ping(ctx context.Context) error { return nil }

func (s *memStore) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	if err := s.fail["CreateJob"]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	stored.Shifts = nil
	s.jobs[job.ID] = stored
	return nil
}

func (s *memStore) GetJobByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &job, nil
}

func (s *memStore) DeleteJob(ctx context.Context, tx store.DBTransaction, id uuid.UUID) error {
	if err := s.fail["DeleteJob"]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *memStore) CreateShifts(ctx context.Context, tx store.DBTransaction, shifts []store.Shift) error {
	if err := s.fail["CreateShifts"]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range shifts {
		shifts[i].Version = 0
		s.shifts[shifts[i].ID] = shifts[i]
	}
	return nil
}

func (s *memStore) GetShiftByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sh, nil
}

func (s *memStore) filter(keep func(store.Shift) bool) []store.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []store.Shift{}
	for _, sh := range s.shifts {
		if keep(sh) {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *memStore) ListShiftsByJob(ctx context.Context, tx store.DBTransaction, jobID uuid.UUID) ([]store.Shift, error) {
	if err := s.fail["ListShiftsByJob"]; err != nil {
		return nil, err
	}
	return s.filter(func(sh store.Shift) bool { return sh.JobID == jobID }), nil
}

func (s *memStore) ListShiftsByTalent(ctx context.Context, tx store.DBTransaction, talentID uuid.UUID) ([]store.Shift, error) {
	if err := s.fail["ListShiftsByTalent"]; err != nil {
		return nil, err
	}
	return s.filter(func(sh store.Shift) bool { return sh.HeldBy(talentID) }), nil
}

func (s *memStore) UpdateShiftTalent(ctx context.Context, tx store.DBTransaction, shift *store.Shift) error {
	if err := s.fail["UpdateShiftTalent"]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.shifts[shift.ID]
	if !ok || stored.Version != shift.Version {
		return store.ErrStaleVersion
	}
	stored.TalentID = shift.TalentID
	stored.Version++
	s.shifts[shift.ID] = stored
	shift.Version = stored.Version
	return nil
}

func (s *memStore) DeleteShift(ctx context.Context, tx store.DBTransaction, id uuid.UUID, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.shifts[id]
	if !ok || stored.Version != version {
		return store.ErrStaleVersion
	}
	delete(s.shifts, id)
	return nil
}

func (s *memStore) DeleteShiftsByJob(ctx context.Context, tx store.DBTransaction, jobID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sh := range s.shifts {
		if sh.JobID == jobID {
			delete(s.shifts, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) ReassignTalent(ctx context.Context, tx store.DBTransaction, from, to uuid.UUID) (int64, error) {
	if err := s.fail["ReassignTalent"]; err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sh := range s.shifts {
		if sh.HeldBy(from) {
			sh.TalentID = uuid.NullUUID{UUID: to, Valid: true}
			sh.Version++
			s.shifts[id] = sh
			n++
		}
	}
	return n, nil
}
