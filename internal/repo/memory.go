package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyantiq/itinerary/internal/domain"
)

// memoryTripStore keeps trips in a map. Trips are cloned on the way in and on
// the way out, so callers never hold a reference into the map.
type memoryTripStore struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]domain.Trip
	now   func() time.Time
}

// NewMemoryTripStore returns an empty in-process TripStore.
func NewMemoryTripStore() TripStore {
	return &memoryTripStore{
		trips: make(map[uuid.UUID]domain.Trip),
		now:   time.Now,
	}
}

func (m *memoryTripStore) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	t := trip.Clone()
	t.ID = uuid.New()
	t.Activities = assignIDs(t.Activities)
	t.CreatedAt = m.now().UTC()
	t.UpdatedAt = t.CreatedAt
	t.Recompute()

	m.mu.Lock()
	m.trips[t.ID] = t
	m.mu.Unlock()

	return t.Clone(), nil
}

func (m *memoryTripStore) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	m.mu.RLock()
	t, ok := m.trips[id]
	m.mu.RUnlock()

	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.GetByID: %w", domain.ErrTripNotFound)
	}
	return t.Clone(), nil
}

func (m *memoryTripStore) List(_ context.Context) ([]domain.Trip, error) {
	return m.sorted(), nil
}

func (m *memoryTripStore) ListPaged(_ context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all := m.sorted()
	total := int64(len(all))

	start, end := p.Bounds(len(all))
	return all[start:end], total, nil
}

func (m *memoryTripStore) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.trips[trip.ID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Update: %w", domain.ErrTripNotFound)
	}

	t := trip.Clone()
	t.Activities = assignIDs(t.Activities)
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = m.now().UTC()
	t.Recompute()
	m.trips[t.ID] = t

	return t.Clone(), nil
}

func (m *memoryTripStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[id]; !ok {
		return fmt.Errorf("repo.TripStore.Delete: %w", domain.ErrTripNotFound)
	}
	delete(m.trips, id)
	return nil
}

// sorted returns clones of every trip, most recent start date first.
func (m *memoryTripStore) sorted() []domain.Trip {
	m.mu.RLock()
	out := make([]domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		out = append(out, t.Clone())
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Trip) int {
		if c := b.StartDate.Compare(a.StartDate); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}
