package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/repo"
)

// Itinerary is the engine that owns a trip's activity list. Every mutation
// of a trip is serialized on that trip's id and follows the same cycle:
// load, mutate a clone, recompute spend and progress, store. A failed
// mutation never reaches the store.
type Itinerary struct {
	trips  repo.TripStore
	locks  *keyedMutex
	strict bool
}

// ItineraryOption customises an Itinerary.
type ItineraryOption func(*Itinerary)

// WithStrictTransitions enables the planning → upcoming → in_progress →
// completed state machine, with cancellation from any non-terminal status.
func WithStrictTransitions(strict bool) ItineraryOption {
	return func(it *Itinerary) { it.strict = strict }
}

// NewItinerary constructs an Itinerary over the given store.
func NewItinerary(trips repo.TripStore, opts ...ItineraryOption) *Itinerary {
	it := &Itinerary{trips: trips, locks: newKeyedMutex()}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// mutate runs fn against a private copy of the trip under the trip's lock and
// stores the result. If fn fails the store is left untouched.
func (it *Itinerary) mutate(ctx context.Context, tripID uuid.UUID, fn func(trip *domain.Trip) error) (domain.Trip, error) {
	unlock := it.locks.Lock(tripID)
	defer unlock()

	current, err := it.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return domain.Trip{}, err
	}
	next.Recompute()
	return it.trips.Update(ctx, next)
}

// AddActivity validates the activity against the trip and appends it.
// It returns the updated trip and the activities the new one overlaps, which
// are advisory only: conflicts never block the insert. An activity dated
// outside the trip fails with domain.ErrDateOutOfRange and is never clamped.
func (it *Itinerary) AddActivity(ctx context.Context, tripID uuid.UUID, a domain.Activity) (domain.Trip, []domain.Activity, error) {
	var conflicts []domain.Activity
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		a = normalizeActivity(a)
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		} else if trip.IndexOf(a.ID) >= 0 {
			return fmt.Errorf("%w: activity %s already exists", domain.ErrValidation, a.ID)
		}
		if err := validateActivity(*trip, a); err != nil {
			return err
		}
		conflicts = domain.DetectConflicts(*trip, a)
		trip.Activities = append(trip.Activities, a)
		return nil
	})
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.Itinerary.AddActivity: %w", err)
	}
	return trip, conflicts, nil
}

// UpdateActivity replaces an existing activity in place (reschedule,
// re-price, mark booked), keeping its position. Conflicts are returned the
// same way as AddActivity.
func (it *Itinerary) UpdateActivity(ctx context.Context, tripID uuid.UUID, a domain.Activity) (domain.Trip, []domain.Activity, error) {
	var conflicts []domain.Activity
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		idx := trip.IndexOf(a.ID)
		if idx < 0 {
			return domain.ErrActivityNotFound
		}
		a = normalizeActivity(a)
		if err := validateActivity(*trip, a); err != nil {
			return err
		}
		conflicts = domain.DetectConflicts(*trip, a)
		trip.Activities[idx] = a
		return nil
	})
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.Itinerary.UpdateActivity: %w", err)
	}
	return trip, conflicts, nil
}

// DetectConflicts returns the activities of the trip that overlap candidate
// on the same date. It reads a snapshot and changes nothing.
func (it *Itinerary) DetectConflicts(ctx context.Context, tripID uuid.UUID, candidate domain.Activity) ([]domain.Activity, error) {
	trip, err := it.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.Itinerary.DetectConflicts: %w", err)
	}
	if !candidate.EndTime.After(candidate.StartTime) {
		return nil, fmt.Errorf("service.Itinerary.DetectConflicts: %w: end_time must be after start_time", domain.ErrValidation)
	}
	return domain.DetectConflicts(trip, normalizeActivity(candidate)), nil
}

// Reorder moves an activity to newPosition in the trip's list without
// touching its times. Positions outside the list are clamped to its ends.
func (it *Itinerary) Reorder(ctx context.Context, tripID, activityID uuid.UUID, newPosition int) (domain.Trip, error) {
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		idx := trip.IndexOf(activityID)
		if idx < 0 {
			return domain.ErrActivityNotFound
		}
		moved := trip.Activities[idx]
		rest := slices.Delete(trip.Activities, idx, idx+1)
		pos := max(0, min(newPosition, len(rest)))
		trip.Activities = slices.Insert(rest, pos, moved)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.Itinerary.Reorder: %w", err)
	}
	return trip, nil
}

// RemoveActivity deletes an activity and recomputes spend and progress.
// An unknown id fails with domain.ErrActivityNotFound and changes nothing.
func (it *Itinerary) RemoveActivity(ctx context.Context, tripID, activityID uuid.UUID) (domain.Trip, error) {
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		idx := trip.IndexOf(activityID)
		if idx < 0 {
			return domain.ErrActivityNotFound
		}
		trip.Activities = slices.Delete(trip.Activities, idx, idx+1)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.Itinerary.RemoveActivity: %w", err)
	}
	return trip, nil
}

// UpdateStatus moves the trip to status. Any status is reachable from any
// other unless strict transitions are enabled, in which case illegal moves
// fail with domain.ErrInvalidTransition.
func (it *Itinerary) UpdateStatus(ctx context.Context, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		next, err := domain.ParseTripStatus(string(status))
		if err != nil {
			return err
		}
		if it.strict && !domain.CanTransition(trip.Status, next) {
			return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrInvalidTransition, trip.Status, next)
		}
		trip.Status = next
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.Itinerary.UpdateStatus: %w", err)
	}
	return trip, nil
}

// CommitItem turns a discovery result into a scheduled activity on the trip.
func (it *Itinerary) CommitItem(ctx context.Context, tripID uuid.UUID, item domain.ActivityItem, start, end time.Time) (domain.Trip, []domain.Activity, error) {
	a := domain.Activity{
		Title:        item.Title,
		Category:     item.Category,
		StartTime:    start,
		EndTime:      end,
		Location:     item.Location.Address,
		Cost:         item.Price.Amount,
		SourceItemID: item.ID,
	}
	trip, conflicts, err := it.AddActivity(ctx, tripID, a)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.Itinerary.CommitItem: %w", err)
	}
	return trip, conflicts, nil
}

// ApplyDraft appends every planned activity of an AI draft to the trip. Day N
// of the draft is the trip's start date plus N-1 days. The whole draft is
// validated first; if any slot is invalid or out of range nothing is added.
func (it *Itinerary) ApplyDraft(ctx context.Context, tripID uuid.UUID, draft domain.DraftItinerary) (domain.Trip, error) {
	trip, err := it.mutate(ctx, tripID, func(trip *domain.Trip) error {
		added, err := draftActivities(*trip, draft)
		if err != nil {
			return err
		}
		for _, a := range added {
			if err := validateActivity(*trip, a); err != nil {
				return err
			}
		}
		trip.Activities = append(trip.Activities, added...)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.Itinerary.ApplyDraft: %w", err)
	}
	return trip, nil
}

// draftActivities converts the draft's day plans into activities anchored at
// the trip's start date.
func draftActivities(trip domain.Trip, draft domain.DraftItinerary) ([]domain.Activity, error) {
	base := domain.DateOf(trip.StartDate)
	var out []domain.Activity
	for _, day := range draft.DailyPlans {
		if day.Day < 1 {
			return nil, fmt.Errorf("%w: draft day %d is not 1-based", domain.ErrValidation, day.Day)
		}
		date := base.AddDate(0, 0, day.Day-1)
		for _, p := range day.Activities {
			start, err := clockOn(date, p.Start)
			if err != nil {
				return nil, err
			}
			end, err := clockOn(date, p.End)
			if err != nil {
				return nil, err
			}
			category, err := domain.ParseCategory(string(p.Category))
			if err != nil {
				category = domain.DefaultCategory
			}
			out = append(out, domain.Activity{
				ID:        uuid.New(),
				Title:     p.Title,
				Category:  category,
				StartTime: start,
				EndTime:   end,
				Location:  p.Location,
				Cost:      p.Cost,
				Notes:     p.Description,
			})
		}
	}
	return out, nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid clock time %q", domain.ErrValidation, clock)
	}
	return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// normalizeActivity trims text, canonicalizes the category and moves both
// times to UTC. Every store keeps activity times in UTC, so trip date checks
// read the UTC calendar date whatever offset the caller sent.
func normalizeActivity(a domain.Activity) domain.Activity {
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	a.Title = strings.TrimSpace(a.Title)
	a.Location = strings.TrimSpace(a.Location)
	if a.Category == "" {
		a.Category = domain.DefaultCategory
	}
	if c, err := domain.ParseCategory(string(a.Category)); err == nil {
		a.Category = c
	}
	return a
}

// validateActivity enforces the rules shared by every activity mutation.
//   - Title must be non-empty.
//   - Category must be known.
//   - EndTime must be after StartTime.
//   - Cost must be non-negative.
//   - Both ends must fall on dates inside the trip (domain.ErrDateOutOfRange).
func validateActivity(trip domain.Trip, a domain.Activity) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if _, err := domain.ParseCategory(string(a.Category)); err != nil {
		return err
	}
	if a.StartTime.IsZero() || !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", domain.ErrValidation)
	}
	if a.Cost < 0 {
		return fmt.Errorf("%w: cost must be non-negative", domain.ErrValidation)
	}
	// The end instant is excluded, so an activity may finish at midnight after the last day.
	if !trip.CoversDate(a.StartTime) || !trip.CoversDate(a.EndTime.Add(-time.Nanosecond)) {
		return domain.ErrDateOutOfRange
	}
	return nil
}
