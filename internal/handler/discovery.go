package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/voyantiq/itinerary/internal/discovery"
	"github.com/voyantiq/itinerary/internal/domain"
)

// Discover handles POST /discover. Partial provider failure still yields 200
// with the failures listed in statuses; only a total failure is a 502.
// Without any configured provider the endpoint replies 503.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	if s.discovery == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("discovery_disabled", "no providers are configured"))
		return
	}
	var body DiscoverRequest
	if !readBody(w, r, &body) {
		return
	}
	q, err := body.toQuery()
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.discovery.Discover(r.Context(), q)
	if err != nil {
		if errors.Is(err, domain.ErrAllProvidersFailed) {
			writeJSON(w, http.StatusBadGateway, DiscoverFailure{
				Error:    ErrorDetail{Code: "providers_unavailable", Message: "every provider failed"},
				Statuses: statusesToResponse(res.Statuses),
			})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DiscoverResponse{
		Items:    res.Items,
		Statuses: statusesToResponse(res.Statuses),
	})
}

// validateDiscover enforces the discovery input rules.
//   - Latitude within [-90, 90] and longitude within [-180, 180].
//   - Radius, guests and limit are non-negative and within the discovery maxima.
//   - The end date is not before the start date when both are set.
//   - Preferences pass discovery.Preferences.Validate.
func validateDiscover(q discovery.Query) error {
	if q.Location.Latitude < -90 || q.Location.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if q.Location.Longitude < -180 || q.Location.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	if q.RadiusMeters < 0 || q.Guests < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: radius_meters, guests and limit must be non-negative", domain.ErrValidation)
	}
	if q.RadiusMeters > discovery.MaxRadiusMeters {
		return fmt.Errorf("%w: radius_meters must be at most %d", domain.ErrValidation, discovery.MaxRadiusMeters)
	}
	if q.Guests > discovery.MaxGuests {
		return fmt.Errorf("%w: guests must be at most %d", domain.ErrValidation, discovery.MaxGuests)
	}
	if q.Limit > discovery.MaxLimit {
		return fmt.Errorf("%w: limit must be at most %d", domain.ErrValidation, discovery.MaxLimit)
	}
	if !q.Dates.Start.IsZero() && !q.Dates.End.IsZero() && q.Dates.End.Before(q.Dates.Start) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	return q.Preferences.Validate()
}
