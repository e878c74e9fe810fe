// Package service contains the business logic of the itinerary core.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/repo"
)

// DefaultCurrency is applied to trips created without one.
const DefaultCurrency = "USD"

// TripService implements the trip-level operations. Activity mutations go
// through Itinerary, never through here.
type TripService struct {
	repo repo.TripStore
}

// NewTripService constructs a TripService backed by the provided TripStore.
func NewTripService(r repo.TripStore) *TripService {
	return &TripService{repo: r}
}

// Create validates and persists a new trip. Status defaults to planning and
// currency to USD. Activities on the input are validated like AddActivity.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = trip.Clone()
	trip.Destination = strings.TrimSpace(trip.Destination)
	trip.Currency = strings.ToUpper(strings.TrimSpace(trip.Currency))
	if trip.Currency == "" {
		trip.Currency = DefaultCurrency
	}
	if trip.Status == "" {
		trip.Status = domain.TripStatusPlanning
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	for i, a := range trip.Activities {
		a = normalizeActivity(a)
		if err := validateActivity(trip, a); err != nil {
			return domain.Trip{}, err
		}
		trip.Activities[i] = a
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips. Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// ListPaged returns one page of trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateTrip enforces the trip-level rules.
//   - Destination must be non-empty.
//   - StartDate and EndDate must be set with StartDate <= EndDate.
//   - Budget must be non-negative.
func validateTrip(trip domain.Trip) error {
	if trip.Destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if domain.DateOf(trip.EndDate).Before(domain.DateOf(trip.StartDate)) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if trip.Budget < 0 {
		return fmt.Errorf("%w: budget must be non-negative", domain.ErrValidation)
	}
	if _, err := domain.ParseTripStatus(string(trip.Status)); err != nil {
		return err
	}
	return nil
}
