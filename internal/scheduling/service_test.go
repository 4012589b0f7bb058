package scheduling

import (
	"context"
	"testing"
	"time"

	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = utc(2020, 1, 1, 0, 0)

func newTestService(t *testing.T, opts ...Option) (*Service, *memStore) {
	t.Helper()
	mem := newMemStore()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(mem, mem, mem, opts...), mem
}

func mustCreateJob(t *testing.T, svc *Service, start, end time.Time) *store.Job {
	t.Helper()
	job, err := svc.CreateJob(context.Background(), uuid.New(), start, end)
	require.NoError(t, err)
	return job
}

func requireKind(t *testing.T, err error, kind Kind, msgs ...string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "error: %v", err)
	if len(msgs) > 0 {
		assert.Equal(t, msgs, MessagesOf(err))
	}
}

func TestCreateJob(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		wantShifts int
	}{
		{"single day", utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0), 1},
		{"five days", utc(2020, 7, 20, 18, 0), utc(2020, 7, 24, 20, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t)
			company := uuid.New()

			job, err := svc.CreateJob(context.Background(), company, tt.start, tt.end)
			require.NoError(t, err)

			assert.Equal(t, company, job.CompanyID)
			assert.Len(t, job.Shifts, tt.wantShifts)
			assert.Equal(t, 1, mem.commits)

			shifts, err := svc.ListShifts(context.Background(), job.ID)
			require.NoError(t, err)
			require.Len(t, shifts, tt.wantShifts)
			for i, sh := range shifts {
				assert.Equal(t, job.ID, sh.JobID)
				assert.False(t, sh.TalentID.Valid, "new shifts are unassigned")
				assert.True(t, sh.StartTime.Before(sh.EndTime))
				assert.True(t, sh.StartTime.Equal(tt.start.AddDate(0, 0, i)))
			}
		})
	}
}

func TestCreateJob_Validation(t *testing.T) {
	rangeMsg := shiftRangeMessage(DefaultMinShiftLength, DefaultMaxShiftLength)

	tests := []struct {
		name       string
		company    uuid.UUID
		start, end time.Time
		want       []string
	}{
		{
			name:    "nil company",
			company: uuid.Nil,
			start:   utc(2020, 7, 20, 12, 0),
			end:     utc(2020, 7, 20, 15, 0),
			want:    []string{MsgCompanyIDInvalid},
		},
		{
			name:    "start and end in the past",
			company: uuid.New(),
			start:   utc(2019, 7, 20, 12, 0),
			end:     utc(2019, 7, 20, 15, 0),
			want:    []string{MsgShiftStartInvalid, MsgShiftEndInvalid},
		},
		{
			name:    "missing times",
			company: uuid.New(),
			want:    []string{MsgShiftStartInvalid, MsgShiftEndInvalid},
		},
		{
			name:    "window shorter than minimum",
			company: uuid.New(),
			start:   utc(2020, 7, 20, 12, 0),
			end:     utc(2020, 7, 20, 13, 59),
			want:    []string{rangeMsg},
		},
		{
			name:    "window longer than maximum",
			company: uuid.New(),
			start:   utc(2020, 7, 20, 8, 0),
			end:     utc(2020, 7, 20, 17, 0),
			want:    []string{rangeMsg},
		},
		{
			name:    "start after end",
			company: uuid.New(),
			start:   utc(2020, 7, 22, 12, 0),
			end:     utc(2020, 7, 20, 15, 0),
			want:    []string{rangeMsg},
		},
		{
			name:    "every rule at once",
			company: uuid.Nil,
			start:   utc(2019, 7, 20, 12, 0),
			end:     utc(2019, 7, 20, 12, 30),
			want:    []string{MsgCompanyIDInvalid, MsgShiftStartInvalid, MsgShiftEndInvalid, rangeMsg},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t)

			job, err := svc.CreateJob(context.Background(), tt.company, tt.start, tt.end)

			assert.Nil(t, job)
			requireKind(t, err, KindValidation, tt.want...)
			assert.Empty(t, mem.jobs)
			assert.Empty(t, mem.shifts)
		})
	}
}

func TestCreateJob_WindowBoundsAreInclusive(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 10, 0))
	assert.NoError(t, err)

	_, err = svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 16, 0))
	assert.NoError(t, err)
}

func TestCreateJob_WindowComparesHoursOfDay(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		shift      time.Duration
	}{
		{"minutes past the maximum hour", utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 20, 30), 8*time.Hour + 30*time.Minute},
		{"shorter than two hours of clock time", utc(2020, 7, 20, 10, 30), utc(2020, 7, 20, 12, 15), time.Hour + 45*time.Minute},
		{"just under nine hours", utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 16, 59), 8*time.Hour + 59*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			job, err := svc.CreateJob(context.Background(), uuid.New(), tt.start, tt.end)
			require.NoError(t, err)
			require.Len(t, job.Shifts, 1)
			assert.Equal(t, tt.shift, job.Shifts[0].EndTime.Sub(job.Shifts[0].StartTime))
		})
	}
}

func TestCreateJob_RejectsInvertedDailyShift(t *testing.T) {
	svc, mem := newTestService(t, WithShiftLength(0, 8*time.Hour))

	// Same hour of day, but the daily end clock falls before the start clock.
	_, err := svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 12, 30), utc(2020, 7, 22, 12, 15))

	requireKind(t, err, KindValidation, shiftRangeMessage(0, 8*time.Hour))
	assert.Empty(t, mem.jobs)
}

func TestCreateJob_TruncatesToMicroseconds(t *testing.T) {
	svc, _ := newTestService(t)
	start := utc(2020, 7, 20, 12, 0).Add(1500 * time.Nanosecond)
	end := utc(2020, 7, 20, 15, 0).Add(999 * time.Nanosecond)

	job, err := svc.CreateJob(context.Background(), uuid.New(), start, end)
	require.NoError(t, err)

	assert.Equal(t, utc(2020, 7, 20, 12, 0).Add(time.Microsecond), job.StartTime)
	assert.Equal(t, utc(2020, 7, 20, 15, 0), job.EndTime)
	assert.Equal(t, job.StartTime, job.Shifts[0].StartTime)
	assert.Equal(t, job.EndTime, job.Shifts[0].EndTime)
}

func TestCreateJob_CustomShiftLength(t *testing.T) {
	svc, _ := newTestService(t, WithShiftLength(time.Hour, 12*time.Hour))

	_, err := svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 19, 0))
	assert.NoError(t, err)
}

func TestCreateJob_RollsBackWhenShiftsFail(t *testing.T) {
	svc, mem := newTestService(t)
	mem.fail["CreateShifts"] = errors.New("disk full")

	job, err := svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 12, 0), utc(2020, 7, 22, 15, 0))

	assert.Nil(t, job)
	requireKind(t, err, KindInternal, MsgInternal)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, mem.jobs, "job insert must be rolled back")
	assert.Equal(t, 1, mem.rollbacks)
	assert.Equal(t, 0, mem.commits)
}

func TestCreateJob_BeginFailure(t *testing.T) {
	svc, mem := newTestService(t)
	mem.beginErr = errors.New("too many connections")

	_, err := svc.CreateJob(context.Background(), uuid.New(), utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))

	requireKind(t, err, KindInternal, MsgInternal)
}

func TestListShifts_UnknownJobIsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	shifts, err := svc.ListShifts(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, shifts)
	assert.Empty(t, shifts)
}

func TestListShifts_StoreFailure(t *testing.T) {
	svc, mem := newTestService(t)
	mem.fail["ListShiftsByJob"] = errors.New("timeout")

	_, err := svc.ListShifts(context.Background(), uuid.New())

	requireKind(t, err, KindInternal)
}

func TestAssignTalent(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))
	shiftID := job.Shifts[0].ID
	talent := uuid.New()

	require.NoError(t, svc.AssignTalent(ctx, shiftID, talent))

	stored := mem.shifts[shiftID]
	assert.True(t, stored.HeldBy(talent))
	assert.Equal(t, int64(1), stored.Version)

	err := svc.AssignTalent(ctx, shiftID, talent)
	requireKind(t, err, KindConflict, MsgTalentAlreadyWorking)
}

func TestAssignTalent_ReplacesAnotherTalent(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))
	shiftID := job.Shifts[0].ID
	first, second := uuid.New(), uuid.New()

	require.NoError(t, svc.AssignTalent(ctx, shiftID, first))
	require.NoError(t, svc.AssignTalent(ctx, shiftID, second))

	stored := mem.shifts[shiftID]
	assert.True(t, stored.HeldBy(second))
	assert.Equal(t, int64(2), mem.shifts[shiftID].Version)
}

func TestAssignTalent_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("unknown shift", func(t *testing.T) {
		err := svc.AssignTalent(ctx, uuid.New(), uuid.New())
		requireKind(t, err, KindNotFound, MsgShiftNotPresent)
	})

	t.Run("nil talent", func(t *testing.T) {
		err := svc.AssignTalent(ctx, uuid.New(), uuid.Nil)
		requireKind(t, err, KindValidation, MsgTalentIDInvalid)
	})
}

func TestAssignTalent_RestPeriod(t *testing.T) {
	breakMsg := breakMessage(DefaultMinRestPeriod)

	tests := []struct {
		name      string
		held      [2]time.Time
		candidate [2]time.Time
		wantErr   bool
	}{
		{
			name:      "three hour gap on the same day",
			held:      [2]time.Time{utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 11, 0)},
			candidate: [2]time.Time{utc(2020, 7, 20, 14, 0), utc(2020, 7, 20, 17, 0)},
			wantErr:   true,
		},
		{
			name:      "exactly the minimum rest",
			held:      [2]time.Time{utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 10, 0)},
			candidate: [2]time.Time{utc(2020, 7, 20, 16, 0), utc(2020, 7, 20, 18, 0)},
		},
		{
			name:      "one minute short of the minimum rest",
			held:      [2]time.Time{utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 10, 0)},
			candidate: [2]time.Time{utc(2020, 7, 20, 15, 59), utc(2020, 7, 20, 17, 59)},
			wantErr:   true,
		},
		{
			name:      "held shift later on the same day",
			held:      [2]time.Time{utc(2020, 7, 20, 18, 0), utc(2020, 7, 20, 20, 0)},
			candidate: [2]time.Time{utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0)},
			wantErr:   true,
		},
		{
			name:      "short gap across midnight is allowed",
			held:      [2]time.Time{utc(2020, 7, 20, 20, 0), utc(2020, 7, 20, 23, 0)},
			candidate: [2]time.Time{utc(2020, 7, 21, 2, 0), utc(2020, 7, 21, 5, 0)},
		},
		{
			name:      "different days",
			held:      [2]time.Time{utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0)},
			candidate: [2]time.Time{utc(2020, 7, 22, 12, 0), utc(2020, 7, 22, 15, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t)
			ctx := context.Background()
			talent := uuid.New()

			held := mustCreateJob(t, svc, tt.held[0], tt.held[1])
			candidate := mustCreateJob(t, svc, tt.candidate[0], tt.candidate[1])
			require.NoError(t, svc.AssignTalent(ctx, held.Shifts[0].ID, talent))

			err := svc.AssignTalent(ctx, candidate.Shifts[0].ID, talent)

			if tt.wantErr {
				requireKind(t, err, KindConflict, breakMsg)
				assert.False(t, mem.shifts[candidate.Shifts[0].ID].TalentID.Valid)
				return
			}
			require.NoError(t, err)
			stored := mem.shifts[candidate.Shifts[0].ID]
			assert.True(t, stored.HeldBy(talent))
		})
	}
}

func TestAssignTalent_ConfigurableRestPeriod(t *testing.T) {
	svc, _ := newTestService(t, WithMinRestPeriod(2*time.Hour))
	ctx := context.Background()
	talent := uuid.New()

	held := mustCreateJob(t, svc, utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 11, 0))
	candidate := mustCreateJob(t, svc, utc(2020, 7, 20, 14, 0), utc(2020, 7, 20, 17, 0))
	require.NoError(t, svc.AssignTalent(ctx, held.Shifts[0].ID, talent))

	assert.NoError(t, svc.AssignTalent(ctx, candidate.Shifts[0].ID, talent))
}

func TestAssignTalent_StaleVersion(t *testing.T) {
	svc, mem := newTestService(t)
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))
	mem.fail["UpdateShiftTalent"] = store.ErrStaleVersion

	err := svc.AssignTalent(context.Background(), job.Shifts[0].ID, uuid.New())

	requireKind(t, err, KindConflict, MsgConcurrentModification)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 1, mem.rollbacks)
}

func TestCancelJob(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 18, 0), utc(2020, 7, 24, 20, 0))
	other := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))

	require.NoError(t, svc.CancelJob(ctx, job.ID))

	shifts, err := svc.ListShifts(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, shifts)
	assert.NotContains(t, mem.jobs, job.ID)

	remaining, err := svc.ListShifts(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	err = svc.CancelJob(ctx, job.ID)
	requireKind(t, err, KindNotFound, MsgJobIDNotPresent)
}

func TestCancelJob_RollsBackWhenJobDeleteFails(t *testing.T) {
	svc, mem := newTestService(t)
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 18, 0), utc(2020, 7, 22, 20, 0))
	mem.fail["DeleteJob"] = errors.New("lock timeout")

	err := svc.CancelJob(context.Background(), job.ID)

	requireKind(t, err, KindInternal)
	assert.Len(t, mem.shifts, 3, "shift deletes must be rolled back")
}

func TestCancelShift(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 18, 0), utc(2020, 7, 21, 20, 0))
	require.Len(t, job.Shifts, 2)

	require.NoError(t, svc.CancelShift(ctx, job.Shifts[0].ID))
	assert.NotContains(t, mem.shifts, job.Shifts[0].ID)

	err := svc.CancelShift(ctx, job.Shifts[1].ID)
	requireKind(t, err, KindConflict, MsgShiftNotCancellable)
	assert.Contains(t, mem.shifts, job.Shifts[1].ID)

	err = svc.CancelShift(ctx, job.Shifts[0].ID)
	requireKind(t, err, KindNotFound, MsgShiftNotPresent)
}

func TestCancelShift_SingleShiftJob(t *testing.T) {
	svc, _ := newTestService(t)
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 20, 15, 0))

	err := svc.CancelShift(context.Background(), job.Shifts[0].ID)

	requireKind(t, err, KindConflict, MsgShiftNotCancellable)
}

func TestCancelShift_AssignedShift(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 12, 0), utc(2020, 7, 21, 15, 0))
	require.NoError(t, svc.AssignTalent(ctx, job.Shifts[0].ID, uuid.New()))

	require.NoError(t, svc.CancelShift(ctx, job.Shifts[0].ID))
	assert.Len(t, mem.shifts, 1)
}

type recordingIDs struct{ last uuid.UUID }

func (r *recordingIDs) next() uuid.UUID {
	r.last = uuid.New()
	return r.last
}

func TestCancelAllShiftsForTalent(t *testing.T) {
	ids := &recordingIDs{}
	svc, mem := newTestService(t, WithIDGenerator(ids.next))
	ctx := context.Background()
	talent, bystander := uuid.New(), uuid.New()

	job := mustCreateJob(t, svc, utc(2020, 7, 20, 8, 0), utc(2020, 7, 22, 10, 0))
	for _, sh := range job.Shifts[:2] {
		require.NoError(t, svc.AssignTalent(ctx, sh.ID, talent))
	}
	require.NoError(t, svc.AssignTalent(ctx, job.Shifts[2].ID, bystander))

	require.NoError(t, svc.CancelAllShiftsForTalent(ctx, talent))
	placeholder := ids.last

	for _, sh := range job.Shifts[:2] {
		stored := mem.shifts[sh.ID]
		assert.False(t, stored.HeldBy(talent))
		assert.True(t, stored.HeldBy(placeholder), "shifts stay assigned, to the placeholder")
		assert.Equal(t, int64(2), stored.Version)
	}
	bystanderShift := mem.shifts[job.Shifts[2].ID]
	assert.True(t, bystanderShift.HeldBy(bystander))
	assert.NotEqual(t, talent, placeholder)
	assert.NotEqual(t, bystander, placeholder)

	err := svc.CancelAllShiftsForTalent(ctx, talent)
	requireKind(t, err, KindNotFound, MsgNoShiftsForTalent)
}

func TestCancelAllShiftsForTalent_StoreFailure(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	talent := uuid.New()
	job := mustCreateJob(t, svc, utc(2020, 7, 20, 8, 0), utc(2020, 7, 20, 10, 0))
	require.NoError(t, svc.AssignTalent(ctx, job.Shifts[0].ID, talent))
	mem.fail["ReassignTalent"] = errors.New("deadlock detected")

	err := svc.CancelAllShiftsForTalent(ctx, talent)

	requireKind(t, err, KindInternal, MsgInternal)
	stored := mem.shifts[job.Shifts[0].ID]
	assert.True(t, stored.HeldBy(talent))
}

func TestRestPeriodViolated_IgnoresCandidateItself(t *testing.T) {
	candidate := &store.Shift{
		ID:        uuid.New(),
		StartTime: utc(2020, 7, 20, 12, 0),
		EndTime:   utc(2020, 7, 20, 15, 0),
	}

	assert.False(t, restPeriodViolated([]store.Shift{*candidate}, candidate, DefaultMinRestPeriod))
	assert.False(t, restPeriodViolated(nil, candidate, DefaultMinRestPeriod))
}
