package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/repo"
	"github.com/voyantiq/itinerary/internal/service"
)

// ---- helpers ---------------------------------------------------------------

// day returns <hour>:<minute> UTC on April <d>, 2025; validTrip covers April 1-5.
func day(d, hour, minute int) time.Time {
	return time.Date(2025, 4, d, hour, minute, 0, 0, time.UTC)
}

func act(title string, start, end time.Time, cost float64, booked bool) domain.Activity {
	return domain.Activity{
		Title:     title,
		Category:  domain.CategoryCulture,
		StartTime: start,
		EndTime:   end,
		Cost:      cost,
		Booked:    booked,
	}
}

// newEngine returns an Itinerary over a fresh memory store holding one valid trip.
func newEngine(t *testing.T, opts ...service.ItineraryOption) (*service.Itinerary, repo.TripStore, uuid.UUID) {
	t.Helper()
	store := repo.NewMemoryTripStore()
	trip, err := store.Create(context.Background(), validTrip())
	require.NoError(t, err)
	return service.NewItinerary(store, opts...), store, trip.ID
}

func mustAdd(t *testing.T, it *service.Itinerary, tripID uuid.UUID, a domain.Activity) domain.Trip {
	t.Helper()
	trip, _, err := it.AddActivity(context.Background(), tripID, a)
	require.NoError(t, err)
	return trip
}

func titlesOf(activities []domain.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.Title
	}
	return out
}

func assertDerived(t *testing.T, trip domain.Trip) {
	t.Helper()
	var spend float64
	var booked int
	for _, a := range trip.Activities {
		spend += a.Cost
		if a.Booked {
			booked++
		}
	}
	assert.InDelta(t, spend, trip.Spend, 1e-9, "spend is the sum of activity costs")
	want := 0.0
	if len(trip.Activities) > 0 {
		want = float64(booked) / float64(len(trip.Activities))
	}
	assert.InDelta(t, want, trip.Progress, 1e-9, "progress is booked/total")
	assert.GreaterOrEqual(t, trip.Progress, 0.0)
	assert.LessOrEqual(t, trip.Progress, 1.0)
}

// ---- AddActivity -----------------------------------------------------------

func TestItinerary_AddActivity_AppendsAndRecomputes(t *testing.T) {
	it, _, tripID := newEngine(t)

	trip, conflicts, err := it.AddActivity(context.Background(), tripID,
		act("Kinkaku-ji", day(2, 9, 0), day(2, 11, 0), 5, true))

	require.NoError(t, err)
	assert.Empty(t, conflicts)
	require.Len(t, trip.Activities, 1)
	assert.NotEqual(t, uuid.Nil, trip.Activities[0].ID)
	assert.InDelta(t, 5.0, trip.Spend, 1e-9)
	assert.Equal(t, 1.0, trip.Progress)
}

func TestItinerary_AddActivity_ConflictsAreAdvisory(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("Tea ceremony", day(2, 10, 0), day(2, 12, 0), 40, false))

	trip, conflicts, err := it.AddActivity(context.Background(), tripID,
		act("Nishiki market", day(2, 11, 0), day(2, 13, 0), 0, false))

	require.NoError(t, err, "conflicts never block the insert")
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Tea ceremony", conflicts[0].Title)
	assert.Len(t, trip.Activities, 2)
}

func TestItinerary_AddActivity_TouchingEndpointsDoNotConflict(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("morning", day(3, 8, 0), day(3, 10, 0), 0, false))

	_, conflicts, err := it.AddActivity(context.Background(), tripID,
		act("late morning", day(3, 10, 0), day(3, 11, 0), 0, false))
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, conflicts, err = it.AddActivity(context.Background(), tripID,
		act("overlapping", day(3, 9, 59), day(3, 10, 1), 0, false))
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
}

func TestItinerary_AddActivity_OutOfRangeLeavesTripUnchanged(t *testing.T) {
	it, store, tripID := newEngine(t)
	before := mustAdd(t, it, tripID, act("inside", day(2, 9, 0), day(2, 10, 0), 10, true))

	tests := map[string]domain.Activity{
		"day before start": act("early", day(1, 9, 0).AddDate(0, 0, -1), day(1, 10, 0).AddDate(0, 0, -1), 1, false),
		"day after end":    act("late", day(6, 9, 0), day(6, 10, 0), 1, false),
		"ends after trip":  act("overnight", day(5, 22, 0), day(6, 2, 0), 1, false),
	}

	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := it.AddActivity(context.Background(), tripID, a)

			assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
			assert.ErrorIs(t, err, domain.ErrValidation)
			after, err := store.GetByID(context.Background(), tripID)
			require.NoError(t, err)
			assert.Equal(t, before.Activities, after.Activities)
			assert.Equal(t, before.Spend, after.Spend)
		})
	}
}

func TestItinerary_AddActivity_EndingAtMidnightAfterLastDayIsInside(t *testing.T) {
	it, _, tripID := newEngine(t)

	_, _, err := it.AddActivity(context.Background(), tripID,
		act("night tour", day(5, 22, 0), day(6, 0, 0), 30, false))

	assert.NoError(t, err)
}

func TestItinerary_AddActivity_DatesAreCheckedInUTC(t *testing.T) {
	it, store, tripID := newEngine(t)
	bogota := time.FixedZone("COT", -5*60*60)

	// 23:30 on the last day in Bogota is 04:30 UTC the day after.
	late := time.Date(2025, 4, 5, 23, 30, 0, 0, bogota)
	_, _, err := it.AddActivity(context.Background(), tripID, act("Late dinner", late, late.Add(time.Hour), 30, false))
	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)

	early := time.Date(2025, 4, 2, 9, 0, 0, 0, bogota)
	trip := mustAdd(t, it, tripID, act("Market", early, early.Add(time.Hour), 10, false))
	require.Len(t, trip.Activities, 1)
	assert.Equal(t, time.UTC, trip.Activities[0].StartTime.Location())
	assert.True(t, trip.Activities[0].StartTime.Equal(early))

	stored, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, stored.Activities[0].EndTime.Location())
}

func TestItinerary_AddActivity_Validation(t *testing.T) {
	it, _, tripID := newEngine(t)

	tests := map[string]domain.Activity{
		"blank title":      act("  ", day(2, 9, 0), day(2, 10, 0), 0, false),
		"end before start": act("x", day(2, 10, 0), day(2, 9, 0), 0, false),
		"zero length":      act("x", day(2, 10, 0), day(2, 10, 0), 0, false),
		"negative cost":    act("x", day(2, 9, 0), day(2, 10, 0), -1, false),
		"unknown category": {Title: "x", Category: "nightlife", StartTime: day(2, 9, 0), EndTime: day(2, 10, 0)},
	}

	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := it.AddActivity(context.Background(), tripID, a)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestItinerary_AddActivity_DuplicateID(t *testing.T) {
	it, _, tripID := newEngine(t)
	trip := mustAdd(t, it, tripID, act("a", day(2, 9, 0), day(2, 10, 0), 0, false))

	dup := act("b", day(3, 9, 0), day(3, 10, 0), 0, false)
	dup.ID = trip.Activities[0].ID
	_, _, err := it.AddActivity(context.Background(), tripID, dup)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestItinerary_AddActivity_UnknownTrip(t *testing.T) {
	it, _, _ := newEngine(t)

	_, _, err := it.AddActivity(context.Background(), uuid.New(), act("a", day(2, 9, 0), day(2, 10, 0), 0, false))

	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}

func TestItinerary_FailedMutationNeverWrites(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	store := &mockTripStore{
		getByID: func(context.Context, uuid.UUID) (domain.Trip, error) { return trip, nil },
		update: func(context.Context, domain.Trip) (domain.Trip, error) {
			t.Fatal("Update must not be called when validation fails")
			return domain.Trip{}, nil
		},
	}
	it := service.NewItinerary(store)

	_, _, err := it.AddActivity(context.Background(), trip.ID, act("late", day(9, 9, 0), day(9, 10, 0), 0, false))
	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)

	_, err = it.RemoveActivity(context.Background(), trip.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestItinerary_StoreUpdateErrorIsReturned(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	boom := errors.New("connection reset")
	it := service.NewItinerary(&mockTripStore{
		getByID: func(context.Context, uuid.UUID) (domain.Trip, error) { return trip, nil },
		update:  func(context.Context, domain.Trip) (domain.Trip, error) { return domain.Trip{}, boom },
	})

	_, _, err := it.AddActivity(context.Background(), trip.ID, act("a", day(2, 9, 0), day(2, 10, 0), 0, false))

	assert.ErrorIs(t, err, boom)
}

// ---- DetectConflicts -------------------------------------------------------

func TestItinerary_DetectConflicts_IsSymmetric(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("A", day(2, 9, 0), day(2, 11, 0), 0, false))
	mustAdd(t, it, tripID, act("B", day(2, 10, 0), day(2, 12, 0), 0, false))
	mustAdd(t, it, tripID, act("C", day(2, 12, 0), day(2, 13, 0), 0, false))
	trip := mustAdd(t, it, tripID, act("D", day(3, 10, 0), day(3, 12, 0), 0, false))

	in := func(x, y domain.Activity) bool {
		conflicts, err := it.DetectConflicts(context.Background(), tripID, y)
		require.NoError(t, err)
		for _, c := range conflicts {
			if c.ID == x.ID {
				return true
			}
		}
		return false
	}

	for _, a := range trip.Activities {
		for _, b := range trip.Activities {
			if a.ID == b.ID {
				continue
			}
			assert.Equal(t, in(a, b), in(b, a), "%s/%s", a.Title, b.Title)
		}
	}
	assert.True(t, in(trip.Activities[0], trip.Activities[1]), "A and B overlap")
	assert.False(t, in(trip.Activities[1], trip.Activities[2]), "B ends when C starts")
	assert.False(t, in(trip.Activities[1], trip.Activities[3]), "different dates")
}

func TestItinerary_DetectConflicts_InvalidCandidate(t *testing.T) {
	it, _, tripID := newEngine(t)

	_, err := it.DetectConflicts(context.Background(), tripID, act("x", day(2, 10, 0), day(2, 9, 0), 0, false))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- UpdateActivity --------------------------------------------------------

func TestItinerary_UpdateActivity_ReschedulesInPlace(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("first", day(2, 9, 0), day(2, 10, 0), 10, false))
	trip := mustAdd(t, it, tripID, act("second", day(2, 11, 0), day(2, 12, 0), 20, false))

	moved := trip.Activities[0]
	moved.StartTime = day(2, 11, 30)
	moved.EndTime = day(2, 12, 30)
	moved.Booked = true
	moved.Cost = 15
	got, conflicts, err := it.UpdateActivity(context.Background(), tripID, moved)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, titlesOf(got.Activities), "position kept")
	require.Len(t, conflicts, 1)
	assert.Equal(t, "second", conflicts[0].Title, "no self-conflict")
	assert.InDelta(t, 35.0, got.Spend, 1e-9)
	assert.InDelta(t, 0.5, got.Progress, 1e-9)
}

func TestItinerary_UpdateActivity_NotFound(t *testing.T) {
	it, _, tripID := newEngine(t)
	a := act("ghost", day(2, 9, 0), day(2, 10, 0), 0, false)
	a.ID = uuid.New()

	_, _, err := it.UpdateActivity(context.Background(), tripID, a)

	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

// ---- Reorder ---------------------------------------------------------------

func TestItinerary_Reorder(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("a", day(2, 9, 0), day(2, 10, 0), 0, false))
	mustAdd(t, it, tripID, act("b", day(3, 9, 0), day(3, 10, 0), 0, false))
	trip := mustAdd(t, it, tripID, act("c", day(4, 9, 0), day(4, 10, 0), 0, false))
	c := trip.Activities[2]

	tests := []struct {
		name     string
		position int
		want     []string
	}{
		{"to front", 0, []string{"c", "a", "b"}},
		{"to middle", 1, []string{"a", "c", "b"}},
		{"past the end clamps", 99, []string{"a", "b", "c"}},
		{"negative clamps", -5, []string{"c", "a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := it.Reorder(context.Background(), tripID, c.ID, tc.position)

			require.NoError(t, err)
			assert.Equal(t, tc.want, titlesOf(got.Activities))
			for _, a := range got.Activities {
				if a.ID == c.ID {
					assert.True(t, a.StartTime.Equal(c.StartTime), "times untouched")
				}
			}

			// reset to a, b, c
			_, err = it.Reorder(context.Background(), tripID, c.ID, 2)
			require.NoError(t, err)
		})
	}
}

func TestItinerary_Reorder_NotFound(t *testing.T) {
	it, _, tripID := newEngine(t)

	_, err := it.Reorder(context.Background(), tripID, uuid.New(), 0)

	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
}

// ---- RemoveActivity --------------------------------------------------------

func TestItinerary_RemoveActivity_Recomputes(t *testing.T) {
	it, _, tripID := newEngine(t)
	mustAdd(t, it, tripID, act("a", day(2, 9, 0), day(2, 10, 0), 10, true))
	trip := mustAdd(t, it, tripID, act("b", day(3, 9, 0), day(3, 10, 0), 30, false))

	got, err := it.RemoveActivity(context.Background(), tripID, trip.Activities[0].ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, titlesOf(got.Activities))
	assert.InDelta(t, 30.0, got.Spend, 1e-9)
	assert.Equal(t, 0.0, got.Progress)

	got, err = it.RemoveActivity(context.Background(), tripID, got.Activities[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Activities)
	assert.Equal(t, 0.0, got.Spend)
	assert.Equal(t, 0.0, got.Progress, "empty trip has zero progress, not NaN")
}

func TestItinerary_RemoveActivity_UnknownIDLeavesDerivedFields(t *testing.T) {
	it, store, tripID := newEngine(t)
	before := mustAdd(t, it, tripID, act("a", day(2, 9, 0), day(2, 10, 0), 12, true))

	_, err := it.RemoveActivity(context.Background(), tripID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrActivityNotFound)
	after, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, before.Spend, after.Spend)
	assert.Equal(t, before.Progress, after.Progress)
	assert.Len(t, after.Activities, 1)
}

func TestItinerary_SpendAndProgressHoldAcrossSequences(t *testing.T) {
	it, store, tripID := newEngine(t)
	var ids []uuid.UUID
	for i := range 6 {
		trip := mustAdd(t, it, tripID, act("x", day(1+i%5, 8+i, 0), day(1+i%5, 9+i, 0), float64(i*7), i%2 == 0))
		ids = append(ids, trip.Activities[len(trip.Activities)-1].ID)
		assertDerived(t, trip)
	}
	for _, id := range []uuid.UUID{ids[1], ids[4], ids[0]} {
		trip, err := it.RemoveActivity(context.Background(), tripID, id)
		require.NoError(t, err)
		assertDerived(t, trip)
	}

	stored, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assertDerived(t, stored)
}

// ---- UpdateStatus ----------------------------------------------------------

func TestItinerary_UpdateStatus_PermissiveByDefault(t *testing.T) {
	it, _, tripID := newEngine(t)

	got, err := it.UpdateStatus(context.Background(), tripID, domain.TripStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCompleted, got.Status)

	got, err = it.UpdateStatus(context.Background(), tripID, domain.TripStatusPlanning)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusPlanning, got.Status, "any status reachable from any other")
}

func TestItinerary_UpdateStatus_Strict(t *testing.T) {
	it, _, tripID := newEngine(t, service.WithStrictTransitions(true))

	_, err := it.UpdateStatus(context.Background(), tripID, domain.TripStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, next := range []domain.TripStatus{domain.TripStatusUpcoming, domain.TripStatusInProgress, domain.TripStatusCompleted} {
		got, err := it.UpdateStatus(context.Background(), tripID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	_, err = it.UpdateStatus(context.Background(), tripID, domain.TripStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "completed is terminal")
}

func TestItinerary_UpdateStatus_Unknown(t *testing.T) {
	it, _, tripID := newEngine(t)

	_, err := it.UpdateStatus(context.Background(), tripID, "postponed")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- CommitItem / ApplyDraft -----------------------------------------------

func TestItinerary_CommitItem(t *testing.T) {
	it, _, tripID := newEngine(t)
	item := domain.ActivityItem{
		ID:       "yelp:ippudo",
		Title:    "Ippudo",
		Category: domain.CategoryDining,
		Price:    domain.Price{Amount: 18, Currency: "JPY"},
		Location: domain.Location{Address: "Nishiki-koji"},
		Source:   domain.SourceYelp,
	}

	trip, _, err := it.CommitItem(context.Background(), tripID, item, day(2, 19, 0), day(2, 20, 0))

	require.NoError(t, err)
	require.Len(t, trip.Activities, 1)
	a := trip.Activities[0]
	assert.Equal(t, "Ippudo", a.Title)
	assert.Equal(t, domain.CategoryDining, a.Category)
	assert.Equal(t, 18.0, a.Cost)
	assert.Equal(t, "Nishiki-koji", a.Location)
	assert.Equal(t, "yelp:ippudo", a.SourceItemID)
	assert.False(t, a.Booked)
}

func TestItinerary_CommitItem_CanonicalizesCategory(t *testing.T) {
	it, store, tripID := newEngine(t)
	item := domain.ActivityItem{ID: "yelp:nishiki", Title: "Nishiki Market", Category: "Dining", Source: domain.SourceYelp}

	trip, _, err := it.CommitItem(context.Background(), tripID, item, day(2, 12, 0), day(2, 13, 0))

	require.NoError(t, err)
	require.Len(t, trip.Activities, 1)
	assert.Equal(t, domain.CategoryDining, trip.Activities[0].Category)

	stored, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryDining, stored.Activities[0].Category)
}

func TestItinerary_CommitItem_NoCategoryUsesDefault(t *testing.T) {
	it, _, tripID := newEngine(t)

	trip, _, err := it.CommitItem(context.Background(), tripID, domain.ActivityItem{Title: "Walk"}, day(2, 8, 0), day(2, 9, 0))

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, trip.Activities[0].Category)
}

func TestItinerary_ApplyDraft(t *testing.T) {
	it, _, tripID := newEngine(t)
	draft := domain.DraftItinerary{DailyPlans: []domain.DayPlan{
		{Day: 1, Activities: []domain.PlannedActivity{
			{Start: "09:00", End: "11:00", Title: "Kiyomizu-dera", Cost: 4, Category: domain.CategoryCulture},
		}},
		{Day: 3, Activities: []domain.PlannedActivity{
			{Start: "18:30", End: "20:00", Title: "Pontocho dinner", Cost: 60, Category: "food"},
		}},
	}}

	trip, err := it.ApplyDraft(context.Background(), tripID, draft)

	require.NoError(t, err)
	require.Len(t, trip.Activities, 2)
	assert.True(t, trip.Activities[0].StartTime.Equal(day(1, 9, 0)))
	assert.True(t, trip.Activities[1].StartTime.Equal(day(3, 18, 30)))
	assert.Equal(t, domain.DefaultCategory, trip.Activities[1].Category, "unknown category falls back")
	assert.InDelta(t, 64.0, trip.Spend, 1e-9)
}

func TestItinerary_ApplyDraft_IsAllOrNothing(t *testing.T) {
	it, store, tripID := newEngine(t)
	draft := domain.DraftItinerary{DailyPlans: []domain.DayPlan{
		{Day: 1, Activities: []domain.PlannedActivity{{Start: "09:00", End: "10:00", Title: "ok"}}},
		{Day: 9, Activities: []domain.PlannedActivity{{Start: "09:00", End: "10:00", Title: "past the trip"}}},
	}}

	_, err := it.ApplyDraft(context.Background(), tripID, draft)

	assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
	stored, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Empty(t, stored.Activities)
}

func TestItinerary_ApplyDraft_BadClock(t *testing.T) {
	it, _, tripID := newEngine(t)
	draft := domain.DraftItinerary{DailyPlans: []domain.DayPlan{
		{Day: 1, Activities: []domain.PlannedActivity{{Start: "morning", End: "10:00", Title: "x"}}},
	}}

	_, err := it.ApplyDraft(context.Background(), tripID, draft)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Concurrency -----------------------------------------------------------

func TestItinerary_ConcurrentAddsToSameTripAreSerialized(t *testing.T) {
	it, store, tripID := newEngine(t)
	const n = 50

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := day(1+i%5, i%20, 0)
			_, _, err := it.AddActivity(context.Background(), tripID, act("x", start, start.Add(30*time.Minute), 1, i%2 == 0))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	trip, err := store.GetByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Len(t, trip.Activities, n, "no lost updates")
	assert.InDelta(t, float64(n), trip.Spend, 1e-9)
	assert.InDelta(t, 0.5, trip.Progress, 1e-9)
}

func TestItinerary_DifferentTripsProceedIndependently(t *testing.T) {
	store := repo.NewMemoryTripStore()
	it := service.NewItinerary(store)
	var ids []uuid.UUID
	for range 4 {
		trip, err := store.Create(context.Background(), validTrip())
		require.NoError(t, err)
		ids = append(ids, trip.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := it.AddActivity(context.Background(), id, act("x", day(2, i, 0), day(2, i, 30), 2, false))
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for _, id := range ids {
		trip, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, trip.Activities, 10)
		assert.InDelta(t, 20.0, trip.Spend, 1e-9)
	}
}
