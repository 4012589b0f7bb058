package scheduling

import (
	"context"

	"shiftplane/internal/logger"
	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// CancelJob deletes the job and every shift it owns. Nothing is retained.
func (s *Service) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	return s.inTx(ctx, "cancel_job", func(ctx context.Context, tx store.Tx) error {
		if _, err := s.jobs.GetJobByID(ctx, tx, jobID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound(MsgJobIDNotPresent)
			}
			return err
		}

		removed, err := s.shifts.DeleteShiftsByJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if err := s.jobs.DeleteJob(ctx, tx, jobID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound(MsgJobIDNotPresent)
			}
			return err
		}

		logger.FromContext(ctx, s.log).Info("job cancelled", "job_id", jobID, "shifts_removed", removed)
		return nil
	})
}

// CancelShift deletes a single shift. A job always keeps at least one shift,
// so cancelling the last one is a conflict.
//
// The sibling count is not locked: two concurrent calls on the last two
// shifts of a job can each see the other and both succeed.
func (s *Service) CancelShift(ctx context.Context, shiftID uuid.UUID) error {
	return s.inTx(ctx, "cancel_shift", func(ctx context.Context, tx store.Tx) error {
		shift, err := s.shifts.GetShiftByID(ctx, tx, shiftID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound(MsgShiftNotPresent)
		}
		if err != nil {
			return err
		}

		siblings, err := s.shifts.ListShiftsByJob(ctx, tx, shift.JobID)
		if err != nil {
			return err
		}
		if len(siblings) <= 1 {
			return conflict(MsgShiftNotCancellable)
		}

		if err := s.shifts.DeleteShift(ctx, tx, shift.ID, shift.Version); err != nil {
			return err
		}

		logger.FromContext(ctx, s.log).Info("shift cancelled",
			"shift_id", shift.ID,
			"job_id", shift.JobID,
			"remaining", len(siblings)-1,
		)
		return nil
	})
}

// CancelAllShiftsForTalent removes the talent from every shift it holds.
// The shifts are not freed: all of them move to one freshly generated
// placeholder talent id that no caller knows.
func (s *Service) CancelAllShiftsForTalent(ctx context.Context, talentID uuid.UUID) error {
	return s.inTx(ctx, "cancel_talent_shifts", func(ctx context.Context, tx store.Tx) error {
		held, err := s.shifts.ListShiftsByTalent(ctx, tx, talentID)
		if err != nil {
			return err
		}
		if len(held) == 0 {
			return notFound(MsgNoShiftsForTalent)
		}

		placeholder := s.newID()
		moved, err := s.shifts.ReassignTalent(ctx, tx, talentID, placeholder)
		if err != nil {
			return err
		}

		logger.FromContext(ctx, s.log).Info("talent removed from shifts",
			"talent_id", talentID,
			"placeholder_id", placeholder,
			"shifts", moved,
		)
		return nil
	})
}
