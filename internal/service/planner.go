package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voyantiq/itinerary/internal/domain"
)

// MaxDraftDays bounds the duration of a drafted itinerary.
const MaxDraftDays = 30

// Drafter produces a structured itinerary from a trip request.
// Implementations live in package drafting.
type Drafter interface {
	Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error)
}

// PlannerService validates drafting requests and applies drafts to trips.
type PlannerService struct {
	drafter   Drafter
	trips     *TripService
	itinerary *Itinerary
}

// NewPlannerService constructs a PlannerService. A nil drafter disables
// drafting: every call returns domain.ErrDraftingDisabled.
func NewPlannerService(d Drafter, trips *TripService, itinerary *Itinerary) *PlannerService {
	return &PlannerService{drafter: d, trips: trips, itinerary: itinerary}
}

// Enabled reports whether a drafting backend is configured.
func (s *PlannerService) Enabled() bool {
	return s.drafter != nil
}

// Draft validates req and asks the drafter for an itinerary.
func (s *PlannerService) Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error) {
	if s.drafter == nil {
		return domain.DraftItinerary{}, fmt.Errorf("service.PlannerService.Draft: %w", domain.ErrDraftingDisabled)
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if err := validateDraftRequest(req); err != nil {
		return domain.DraftItinerary{}, err
	}

	draft, err := s.drafter.Draft(ctx, req)
	if err != nil {
		return domain.DraftItinerary{}, fmt.Errorf("service.PlannerService.Draft: %w", err)
	}
	if len(draft.DailyPlans) > req.Duration {
		return domain.DraftItinerary{}, fmt.Errorf("service.PlannerService.Draft: %w: draft has %d days, requested %d",
			domain.ErrMalformedDraft, len(draft.DailyPlans), req.Duration)
	}
	return draft, nil
}

// DraftInto drafts an itinerary for an existing trip and appends it. Missing
// request fields are taken from the trip: destination, remaining budget and
// the trip's length in days.
func (s *PlannerService) DraftInto(ctx context.Context, tripID uuid.UUID, req domain.DraftRequest) (domain.Trip, domain.DraftItinerary, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, domain.DraftItinerary{}, fmt.Errorf("service.PlannerService.DraftInto: %w", err)
	}
	if strings.TrimSpace(req.Destination) == "" {
		req.Destination = trip.Destination
	}
	if req.Budget == 0 {
		req.Budget = max(trip.Remaining(), 0)
	}
	if req.Duration == 0 {
		req.Duration = tripDays(trip)
	}

	draft, err := s.Draft(ctx, req)
	if err != nil {
		return domain.Trip{}, domain.DraftItinerary{}, err
	}
	updated, err := s.itinerary.ApplyDraft(ctx, tripID, draft)
	if err != nil {
		return domain.Trip{}, domain.DraftItinerary{}, fmt.Errorf("service.PlannerService.DraftInto: %w", err)
	}
	return updated, draft, nil
}

func tripDays(t domain.Trip) int {
	days := int(domain.DateOf(t.EndDate).Sub(domain.DateOf(t.StartDate)).Hours()/24) + 1
	return max(1, min(days, MaxDraftDays))
}

// validateDraftRequest enforces the drafting input rules.
//   - Destination must be non-empty.
//   - Budget must be non-negative.
//   - Duration must be between 1 and MaxDraftDays.
func validateDraftRequest(req domain.DraftRequest) error {
	if req.Destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if req.Budget < 0 {
		return fmt.Errorf("%w: budget must be non-negative", domain.ErrValidation)
	}
	if req.Duration < 1 || req.Duration > MaxDraftDays {
		return fmt.Errorf("%w: duration must be between 1 and %d days", domain.ErrValidation, MaxDraftDays)
	}
	return nil
}
