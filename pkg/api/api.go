// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// localLayout is an ISO-8601 date-time without a zone, read as UTC.
const localLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that also accepts zone-less date-times such as
// "2020-07-20T18:00:00", which are taken to be UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON accepts RFC 3339 or a zone-less date-time. null leaves the zero time.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses RFC 3339, falling back to a zone-less date-time in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}
	parsed, err := time.ParseInLocation(localLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return parsed, nil
}

// CreateJobRequest is the request body for creating a new job. Start and End
// carry both the date range and the daily working window.
type CreateJobRequest struct {
	CompanyID string    `json:"company_id"`
	Start     Timestamp `json:"start"`
	End       Timestamp `json:"end"`
}

// CreateJobResponse is the response body after creating a job.
type CreateJobResponse struct {
	JobID string `json:"job_id"`
}

// BookTalentRequest is the request body for booking a talent onto a shift.
type BookTalentRequest struct {
	Talent string `json:"talent"`
}

// ShiftResponse represents a shift in API responses.
// TalentID is null while the shift is unassigned.
type ShiftResponse struct {
	ID       string    `json:"id"`
	TalentID *string   `json:"talent_id"`
	JobID    string    `json:"job_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// GetShiftsResponse is the response body for listing the shifts of a job.
type GetShiftsResponse struct {
	Shifts []ShiftResponse `json:"shifts"`
}

// ErrorMessage is a single human readable failure reason.
type ErrorMessage struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
	Code   string         `json:"code"`
	// Retryable is set when the request lost a concurrent update and can be repeated.
	Retryable bool `json:"retryable,omitempty"`
}

// Messages flattens the error list.
func (e ErrorResponse) Messages() []string {
	out := make([]string, len(e.Errors))
	for i, m := range e.Errors {
		out[i] = m.Message
	}
	return out
}
