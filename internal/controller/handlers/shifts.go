package handlers

import (
	"net/http"

	"shiftplane/pkg/api"
)

// CancelShift handles DELETE /shifts/{id}.
func (h *Handlers) CancelShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := pathID(r)
	if !ok {
		h.httpError(w, "Invalid shift id", http.StatusBadRequest)
		return
	}

	if err := h.svc.CancelShift(r.Context(), shiftID); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BookTalent handles PATCH /shifts/{id}/book.
func (h *Handlers) BookTalent(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := pathID(r)
	if !ok {
		h.httpError(w, "Invalid shift id", http.StatusBadRequest)
		return
	}

	var req api.BookTalentRequest
	if err := decode(w, r, &req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.AssignTalent(r.Context(), shiftID, parseOrNil(req.Talent)); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelTalentShifts handles DELETE /talents/{id}/shifts.
// The talent is removed from every shift it holds.
func (h *Handlers) CancelTalentShifts(w http.ResponseWriter, r *http.Request) {
	talentID, ok := pathID(r)
	if !ok {
		h.httpError(w, "Invalid talent id", http.StatusBadRequest)
		return
	}

	if err := h.svc.CancelAllShiftsForTalent(r.Context(), talentID); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
