// Package scheduling turns jobs into daily shifts and governs how talents are
// booked onto and removed from them.
package scheduling

import (
	"context"
	"log/slog"
	"time"

	"shiftplane/internal/logger"
	"shiftplane/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "shiftplane/scheduling"

// Defaults for the business rules. They can be overridden with Options.
const (
	DefaultMinRestPeriod  = 6 * time.Hour
	DefaultMinShiftLength = 2 * time.Hour
	DefaultMaxShiftLength = 8 * time.Hour
)

// Service implements job creation, booking and cancellation. It holds no
// mutable state; every operation runs in its own store transaction.
type Service struct {
	db     store.Transactor
	jobs   store.JobStore
	shifts store.ShiftStore

	log   *slog.Logger
	now   func() time.Time
	newID func() uuid.UUID

	minRest        time.Duration
	minShiftLength time.Duration
	maxShiftLength time.Duration

	tracer     trace.Tracer
	operations metric.Int64Counter
	generated  metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the base logger. Request-scoped fields are added per call.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now, used to reject jobs that start in the past.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.New for job, shift and placeholder talent ids.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) { s.newID = fn }
}

// WithMinRestPeriod sets the minimum break a talent needs between two shifts.
func WithMinRestPeriod(d time.Duration) Option {
	return func(s *Service) { s.minRest = d }
}

// WithShiftLength bounds the daily working window of a job.
func WithShiftLength(shortest, longest time.Duration) Option {
	return func(s *Service) {
		s.minShiftLength = shortest
		s.maxShiftLength = longest
	}
}

// New creates a Service over the given transactor and repositories.
func New(db store.Transactor, jobs store.JobStore, shifts store.ShiftStore, opts ...Option) *Service {
	s := &Service{
		db:             db,
		jobs:           jobs,
		shifts:         shifts,
		log:            slog.New(slog.DiscardHandler),
		now:            time.Now,
		newID:          uuid.New,
		minRest:        DefaultMinRestPeriod,
		minShiftLength: DefaultMinShiftLength,
		maxShiftLength: DefaultMaxShiftLength,
		tracer:         otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	s.operations, err = meter.Int64Counter("shiftplane.scheduling.operations",
		metric.WithDescription("Scheduling operations by name and outcome"))
	if err != nil {
		s.log.Warn("failed to register operations counter", "error", err)
	}
	s.generated, err = meter.Int64Counter("shiftplane.scheduling.shifts_generated",
		metric.WithDescription("Shifts generated for newly created jobs"))
	if err != nil {
		s.log.Warn("failed to register shifts counter", "error", err)
	}

	return s
}

// inTx runs fn inside one store transaction. Any error rolls back every write
// staged by fn. The returned error is always a *Error.
func (s *Service) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "scheduling."+op)
	defer span.End()

	err := func() error {
		tx, err := s.db.BeginTx(ctx)
		if err != nil {
			return internalError(err, "begin transaction")
		}
		defer tx.Rollback()

		if err := fn(ctx, tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return internalError(err, "commit transaction")
		}
		return nil
	}()

	return s.finish(ctx, span, op, err)
}

// finish classifies err, records the outcome and logs failures. span may be nil
// for failures detected before any work started.
func (s *Service) finish(ctx context.Context, span trace.Span, op string, err error) error {
	outcome := "ok"
	if err != nil {
		err = classify(err, op)
		outcome = KindOf(err).String()
		if span != nil {
			span.SetStatus(codes.Error, outcome)
			span.RecordError(err)
		}

		log := logger.FromContext(ctx, s.log).With("op", op, "kind", outcome)
		if KindOf(err) == KindInternal {
			log.Error("scheduling operation failed", "error", err)
		} else {
			log.Info("scheduling operation rejected", "reason", MessagesOf(err))
		}
	}

	if s.operations != nil {
		s.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("outcome", outcome),
		))
	}
	return err
}

// classify maps store sentinels and unknown failures onto the Error taxonomy.
func classify(err error, op string) error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, store.ErrStaleVersion):
		return &Error{
			Kind:      KindConflict,
			Messages:  []string{MsgConcurrentModification},
			Retryable: true,
			cause:     err,
		}
	default:
		return internalError(err, op)
	}
}
