package scheduling

import (
	"context"
	"time"

	"shiftplane/internal/logger"
	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// AssignTalent books talentID onto the shift.
//
// The talent must not already hold the shift and must have at least the
// minimum rest period between the end of any shift it holds on the same
// calendar day and the start of this one.
//
// The eligibility check and the write are only serialised per shift, through
// the shift's version. Two concurrent calls booking one talent onto two
// different shifts can both pass the rest-period check.
func (s *Service) AssignTalent(ctx context.Context, shiftID, talentID uuid.UUID) error {
	if talentID == uuid.Nil {
		return s.finish(ctx, nil, "assign_talent", validationError(MsgTalentIDInvalid))
	}

	return s.inTx(ctx, "assign_talent", func(ctx context.Context, tx store.Tx) error {
		shift, err := s.shifts.GetShiftByID(ctx, tx, shiftID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound(MsgShiftNotPresent)
		}
		if err != nil {
			return err
		}

		if shift.HeldBy(talentID) {
			return conflict(MsgTalentAlreadyWorking)
		}

		held, err := s.shifts.ListShiftsByTalent(ctx, tx, talentID)
		if err != nil {
			return err
		}
		if restPeriodViolated(held, shift, s.minRest) {
			return conflict(breakMessage(s.minRest))
		}

		shift.TalentID = uuid.NullUUID{UUID: talentID, Valid: true}
		if err := s.shifts.UpdateShiftTalent(ctx, tx, shift); err != nil {
			return err
		}

		logger.FromContext(ctx, s.log).Info("talent booked",
			"shift_id", shift.ID,
			"job_id", shift.JobID,
			"talent_id", talentID,
			"version", shift.Version,
		)
		return nil
	})
}

// restPeriodViolated reports whether any held shift ends on the candidate's
// start day less than minRest before the candidate starts. Held shifts that
// end on a different calendar day never conflict.
func restPeriodViolated(held []store.Shift, candidate *store.Shift, minRest time.Duration) bool {
	for _, h := range held {
		if h.ID == candidate.ID {
			continue
		}
		if sameDay(h.EndTime, candidate.StartTime) && candidate.StartTime.Sub(h.EndTime) < minRest {
			return true
		}
	}
	return false
}
