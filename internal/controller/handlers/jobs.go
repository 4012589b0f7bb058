package handlers

import (
	"net/http"

	"shiftplane/internal/store"
	"shiftplane/pkg/api"
)

// CreateJob handles POST /jobs.
// It creates the job and one shift per calendar day of its range.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if err := decode(w, r, &req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	job, err := h.svc.CreateJob(r.Context(), parseOrNil(req.CompanyID), req.Start.Time, req.End.Time)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.respondJson(w, http.StatusOK, api.CreateJobResponse{JobID: job.ID.String()})
}

// CancelJob handles DELETE /jobs/{id}.
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	if err := h.svc.CancelJob(r.Context(), jobID); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetShifts handles GET /jobs/{id}/shifts.
// Unknown jobs return an empty list.
func (h *Handlers) GetShifts(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(r)
	if !ok {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	shifts, err := h.svc.ListShifts(r.Context(), jobID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	resp := api.GetShiftsResponse{Shifts: make([]api.ShiftResponse, 0, len(shifts))}
	for _, s := range shifts {
		resp.Shifts = append(resp.Shifts, toShiftResponse(s))
	}
	h.respondJson(w, http.StatusOK, resp)
}

func toShiftResponse(s store.Shift) api.ShiftResponse {
	resp := api.ShiftResponse{
		ID:    s.ID.String(),
		JobID: s.JobID.String(),
		Start: s.StartTime,
		End:   s.EndTime,
	}
	if s.TalentID.Valid {
		talent := s.TalentID.UUID.String()
		resp.TalentID = &talent
	}
	return resp
}
