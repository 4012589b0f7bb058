package scheduling

import (
	"context"
	"time"

	"shiftplane/internal/logger"
	"shiftplane/internal/store"

	"github.com/google/uuid"
)

// CreateJob validates the request, generates one shift per calendar day and
// persists the job together with its shifts. The returned job carries its shifts.
func (s *Service) CreateJob(ctx context.Context, companyID uuid.UUID, start, end time.Time) (*store.Job, error) {
	if err := s.validateJobRequest(companyID, start, end); err != nil {
		return nil, s.finish(ctx, nil, "create_job", err)
	}

	// Postgres keeps microseconds; the returned job must match what is read back.
	start = start.UTC().Truncate(time.Microsecond)
	end = end.UTC().Truncate(time.Microsecond)

	job := &store.Job{
		ID:        s.newID(),
		CompanyID: companyID,
		StartTime: start,
		EndTime:   end,
	}

	intervals := GenerateShifts(start, end)
	job.Shifts = make([]store.Shift, len(intervals))
	for i, iv := range intervals {
		if iv.Duration() <= 0 {
			return nil, s.finish(ctx, nil, "create_job",
				validationError(shiftRangeMessage(s.minShiftLength, s.maxShiftLength)))
		}
		job.Shifts[i] = store.Shift{
			ID:        s.newID(),
			JobID:     job.ID,
			StartTime: iv.Start,
			EndTime:   iv.End,
		}
	}

	err := s.inTx(ctx, "create_job", func(ctx context.Context, tx store.Tx) error {
		if err := s.jobs.CreateJob(ctx, tx, job); err != nil {
			return err
		}
		return s.shifts.CreateShifts(ctx, tx, job.Shifts)
	})
	if err != nil {
		return nil, err
	}

	if s.generated != nil {
		s.generated.Add(ctx, int64(len(job.Shifts)))
	}
	logger.FromContext(ctx, s.log).Info("job created",
		"job_id", job.ID,
		"company_id", companyID,
		"shifts", len(job.Shifts),
	)
	return job, nil
}

// ListShifts returns the shifts of a job ordered by start time. An unknown or
// cancelled job yields an empty slice, not an error.
func (s *Service) ListShifts(ctx context.Context, jobID uuid.UUID) ([]store.Shift, error) {
	ctx, span := s.tracer.Start(ctx, "scheduling.list_shifts")
	defer span.End()

	shifts, err := s.shifts.ListShiftsByJob(ctx, nil, jobID)
	if err != nil {
		return nil, s.finish(ctx, span, "list_shifts", err)
	}
	if shifts == nil {
		shifts = []store.Shift{}
	}
	s.finish(ctx, span, "list_shifts", nil)
	return shifts, nil
}

// validateJobRequest checks the request before anything touches the store.
// Every violated rule contributes one message.
func (s *Service) validateJobRequest(companyID uuid.UUID, start, end time.Time) error {
	var msgs []string
	now := s.now()

	if companyID == uuid.Nil {
		msgs = append(msgs, MsgCompanyIDInvalid)
	}
	if start.IsZero() || start.Before(now) {
		msgs = append(msgs, MsgShiftStartInvalid)
	}
	if end.IsZero() || end.Before(now) {
		msgs = append(msgs, MsgShiftEndInvalid)
	}

	// The window is measured in whole hours of the day, so 10:30 to 12:15 counts
	// as two hours even though each shift lasts 1h45m.
	if !start.IsZero() && !end.IsZero() {
		window := time.Duration(end.UTC().Hour()-start.UTC().Hour()) * time.Hour
		if start.After(end) || window < s.minShiftLength || window > s.maxShiftLength {
			msgs = append(msgs, shiftRangeMessage(s.minShiftLength, s.maxShiftLength))
		}
	}

	if len(msgs) > 0 {
		return validationError(msgs...)
	}
	return nil
}
