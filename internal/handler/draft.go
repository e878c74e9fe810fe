package handler

import (
	"net/http"

	"github.com/voyantiq/itinerary/internal/domain"
)

// CreateDraft handles POST /drafts. The draft is returned as-is and not
// attached to any trip.
func (s *Server) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var body domain.DraftRequest
	if !readBody(w, r, &body) {
		return
	}
	draft, err := s.planner.Draft(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DraftIntoTrip handles POST /trips/{tripID}/draft. Request fields left empty
// are taken from the trip; the draft's activities are appended to it.
func (s *Server) DraftIntoTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var body domain.DraftRequest
	if r.ContentLength != 0 && !readBody(w, r, &body) {
		return
	}

	trip, draft, err := s.planner.DraftInto(r.Context(), tripID, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftResult{Trip: tripToResponse(trip), Draft: draft})
}
