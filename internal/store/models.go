// Package store contains the database layer for shiftplane.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Job is a company's request for a block of work over a date range.
// A job exclusively owns its shifts; deleting the job deletes them.
type Job struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time

	// Shifts is populated on creation and by callers that load them explicitly.
	Shifts []Shift
}

// Shift is one bookable day of a job.
type Shift struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	TalentID  uuid.NullUUID
	StartTime time.Time
	EndTime   time.Time

	// Version is the optimistic concurrency token. Every update bumps it by one
	// and a write against a stale version fails with ErrStaleVersion.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HeldBy reports whether the shift is currently assigned to talentID.
func (s *Shift) HeldBy(talentID uuid.UUID) bool {
	return s.TalentID.Valid && s.TalentID.UUID == talentID
}
