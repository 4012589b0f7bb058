// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shiftplane/internal/logger"
	"shiftplane/internal/scheduling"
	"shiftplane/internal/store"
	"shiftplane/pkg/api"

	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; every payload in this API is tiny.
const maxBodyBytes = 1 << 20

// Scheduler is the set of scheduling operations exposed over HTTP.
type Scheduler interface {
	CreateJob(ctx context.Context, companyID uuid.UUID, start, end time.Time) (*store.Job, error)
	ListShifts(ctx context.Context, jobID uuid.UUID) ([]store.Shift, error)
	CancelJob(ctx context.Context, jobID uuid.UUID) error
	CancelShift(ctx context.Context, shiftID uuid.UUID) error
	AssignTalent(ctx context.Context, shiftID, talentID uuid.UUID) error
	CancelAllShiftsForTalent(ctx context.Context, talentID uuid.UUID) error
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	svc Scheduler
	db  Pinger
	log *slog.Logger
}

// New creates a new Handlers instance.
func New(svc Scheduler, db Pinger, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handlers{svc: svc, db: db, log: log}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Errors: []api.ErrorMessage{{Message: message}},
		Code:   strconv.Itoa(code),
	})
}

// serviceError renders a scheduling failure with the status matching its kind.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(scheduling.KindOf(err))
	if code == http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.log).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	msgs := scheduling.MessagesOf(err)
	resp := api.ErrorResponse{
		Errors:    make([]api.ErrorMessage, len(msgs)),
		Code:      strconv.Itoa(code),
		Retryable: scheduling.IsRetryable(err),
	}
	for i, m := range msgs {
		resp.Errors[i] = api.ErrorMessage{Message: m}
	}
	h.respondJson(w, code, resp)
}

func statusFor(kind scheduling.Kind) int {
	switch kind {
	case scheduling.KindValidation:
		return http.StatusBadRequest
	case scheduling.KindNotFound:
		return http.StatusNotFound
	case scheduling.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

// decode reads a JSON body into v, bounded by maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// parseOrNil treats an empty or malformed id as the nil UUID so the service
// reports it together with every other validation failure.
func parseOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
