package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// AddActivity handles POST /trips/{tripID}/activities.
// Overlapping activities are reported in the reply but never block the insert.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var body ActivityRequest
	if !readBody(w, r, &body) {
		return
	}
	a, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	trip, conflicts, err := s.itinerary.AddActivity(r.Context(), tripID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityResult(trip, conflicts))
}

// UpdateActivity handles PUT /trips/{tripID}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := activityPath(w, r)
	if !ok {
		return
	}
	var body ActivityRequest
	if !readBody(w, r, &body) {
		return
	}
	a, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = activityID

	trip, conflicts, err := s.itinerary.UpdateActivity(r.Context(), tripID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityResult(trip, conflicts))
}

// RemoveActivity handles DELETE /trips/{tripID}/activities/{activityID}.
func (s *Server) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := activityPath(w, r)
	if !ok {
		return
	}
	trip, err := s.itinerary.RemoveActivity(r.Context(), tripID, activityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ReorderActivity handles PUT /trips/{tripID}/activities/{activityID}/position.
func (s *Server) ReorderActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := activityPath(w, r)
	if !ok {
		return
	}
	var body PositionRequest
	if !readBody(w, r, &body) {
		return
	}
	if body.Position == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("position is required"))
		return
	}

	trip, err := s.itinerary.Reorder(r.Context(), tripID, activityID, *body.Position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DetectConflicts handles POST /trips/{tripID}/conflicts. It checks a
// candidate activity against the trip without changing anything.
func (s *Server) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var body ActivityRequest
	if !readBody(w, r, &body) {
		return
	}
	candidate, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	conflicts, err := s.itinerary.DetectConflicts(r.Context(), tripID, candidate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConflictList{Conflicts: conflicts})
}

// CommitItem handles POST /trips/{tripID}/items: it schedules a discovery
// result as an activity.
func (s *Server) CommitItem(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var body CommitItemRequest
	if !readBody(w, r, &body) {
		return
	}

	trip, conflicts, err := s.itinerary.CommitItem(r.Context(), tripID, body.Item, body.StartTime, body.EndTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activityResult(trip, conflicts))
}

func activityPath(w http.ResponseWriter, r *http.Request) (tripID, activityID uuid.UUID, ok bool) {
	if tripID, ok = pathUUID(w, r, "tripID"); !ok {
		return
	}
	activityID, ok = pathUUID(w, r, "activityID")
	return
}
