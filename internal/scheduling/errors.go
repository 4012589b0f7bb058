package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Kind classifies a scheduling failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Messages returned to callers.
const (
	MsgCompanyIDInvalid       = "Company ID is Invalid"
	MsgTalentIDInvalid        = "Talent ID is Invalid"
	MsgShiftStartInvalid      = "Start time of shift is Invalid"
	MsgShiftEndInvalid        = "End time of shift is Invalid"
	MsgShiftNotPresent        = "Shift provided does not exist"
	MsgTalentAlreadyWorking   = "Talent is already working for the provided shift"
	MsgJobIDNotPresent        = "Job Id does not exist"
	MsgShiftNotCancellable    = "Jobs have to have at least one shift"
	MsgNoShiftsForTalent      = "No Shifts found for the provided Talent Id"
	MsgConcurrentModification = "Shift was modified concurrently, please retry"
	MsgInternal               = "Internal server error"
)

func shiftRangeMessage(minLen, maxLen time.Duration) string {
	return fmt.Sprintf("Shift timings must be at most %s and min %s because talents are not allowed to work less than %s shift",
		hours(maxLen), hours(minLen), hours(minLen))
}

func breakMessage(minRest time.Duration) string {
	return fmt.Sprintf("There has to be at least a %s break between shifts for a Talent", hours(minRest))
}

func hours(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", d/time.Hour)
	}
	return d.String()
}

// Error is the failure type returned by every Service operation.
type Error struct {
	Kind     Kind
	Messages []string

	// Retryable is set when the operation lost an optimistic concurrency race
	// and can be repeated as-is.
	Retryable bool

	cause error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func validationError(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{msg}}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Messages: []string{msg}}
}

func internalError(err error, op string) *Error {
	return &Error{Kind: KindInternal, Messages: []string{MsgInternal}, cause: errors.Wrap(err, op)}
}

// KindOf returns the Kind of err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessagesOf returns the caller-facing messages of err. Internal causes are never exposed.
func MessagesOf(err error) []string {
	var e *Error
	if errors.As(err, &e) && len(e.Messages) > 0 {
		return e.Messages
	}
	return []string{MsgInternal}
}

// IsRetryable reports whether err came from a lost optimistic concurrency race.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
