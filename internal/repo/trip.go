package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyantiq/itinerary/internal/domain"
)

// TripStore defines the persistence operations for Trips.
// Every method works on whole trips, activities included, and every trip it
// returns has Spend and Progress recomputed from its activities. Returned
// trips share no memory with the store.
type TripStore interface {
	// Create persists a new trip under a freshly generated id and returns it
	// with id, created_at and updated_at populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrTripNotFound if no trip has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date descending.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListPaged returns one page of List and the total number of trips.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update replaces a trip and its full activity list atomically.
	// Returns domain.ErrTripNotFound if no trip has that id.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and its activities.
	// Returns domain.ErrTripNotFound if no trip has that id.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripStore is the Postgres implementation of TripStore.
type pgTripStore struct {
	db db
}

// NewTripStore constructs a TripStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripStore(db db) TripStore {
	return &pgTripStore{db: db}
}

const tripColumns = `id, destination, start_date, end_date, status, budget, currency, created_at, updated_at`

// Create inserts a new trip row plus its activities in one transaction.
func (r *pgTripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (destination, start_date, end_date, status, budget, currency)
		VALUES (@destination, @start_date, @end_date, @status, @budget, @currency)
		RETURNING ` + tripColumns

	var created domain.Trip
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanTrip(tx.QueryRow(ctx, q, tripArgs(trip)))
		if err != nil {
			return err
		}
		created.Activities = assignIDs(trip.Activities)
		return insertActivities(ctx, tx, created.ID, created.Activities)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Create: %w", err)
	}
	created.Recompute()
	return created, nil
}

// GetByID retrieves a trip and its ordered activities.
func (r *pgTripStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	trip, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.GetByID: %w", err)
	}
	byTrip, err := r.activitiesFor(ctx, []uuid.UUID{trip.ID})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.GetByID: %w", err)
	}
	trip.Activities = nonNil(byTrip[trip.ID])
	trip.Recompute()
	return trip, nil
}

// List returns all trips ordered by start_date descending (most recent first).
func (r *pgTripStore) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date DESC, created_at DESC`

	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.TripStore.List: %w", err)
	}
	return trips, nil
}

// ListPaged returns one page of trips and the total count.
func (r *pgTripStore) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trips`
	const q = `SELECT ` + tripColumns + ` FROM trips
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripStore.ListPaged: count: %w", err)
	}
	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripStore.ListPaged: %w", err)
	}
	return trips, total, nil
}

// Update overwrites the trip row and rewrites its activity list in one
// transaction, so readers never observe a half-written itinerary.
func (r *pgTripStore) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET destination = @destination,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    status      = @status,
		    budget      = @budget,
		    currency    = @currency,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	var updated domain.Trip
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanTrip(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM activities WHERE trip_id = @trip_id`,
			pgx.NamedArgs{"trip_id": trip.ID}); err != nil {
			return fmt.Errorf("clear activities: %w", err)
		}
		updated.Activities = assignIDs(trip.Activities)
		return insertActivities(ctx, tx, trip.ID, updated.Activities)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Update: %w", err)
	}
	updated.Recompute()
	return updated, nil
}

// Delete removes a trip by primary key; activities cascade.
func (r *pgTripStore) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripStore.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripStore.Delete: %w", domain.ErrTripNotFound)
	}
	return nil
}

func (r *pgTripStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgTripStore) queryTrips(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	ids := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	byTrip, err := r.activitiesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Activities = nonNil(byTrip[trips[i].ID])
		trips[i].Recompute()
	}
	return trips, nil
}

// activitiesFor loads the activities of every trip in ids, in list order.
func (r *pgTripStore) activitiesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	const q = `
		SELECT trip_id, id, title, category, start_time, end_time, location,
		       cost, booked, booking_ref, notes, source_item_id
		FROM activities
		WHERE trip_id = ANY(@trip_ids)
		ORDER BY trip_id, position`

	out := make(map[uuid.UUID][]domain.Activity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_ids": ids})
	if err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tripID, id pgtype.UUID
			a          domain.Activity
		)
		if err := rows.Scan(&tripID, &id, &a.Title, &a.Category, &a.StartTime, &a.EndTime, &a.Location,
			&a.Cost, &a.Booked, &a.BookingRef, &a.Notes, &a.SourceItemID); err != nil {
			return nil, fmt.Errorf("activities: scan: %w", err)
		}
		a.ID = uuid.UUID(id.Bytes)
		a.StartTime = a.StartTime.UTC()
		a.EndTime = a.EndTime.UTC()
		key := uuid.UUID(tripID.Bytes)
		out[key] = append(out[key], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activities: rows: %w", err)
	}
	return out, nil
}

func insertActivities(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, activities []domain.Activity) error {
	const q = `
		INSERT INTO activities (id, trip_id, position, title, category, start_time, end_time,
		                        location, cost, booked, booking_ref, notes, source_item_id)
		VALUES (@id, @trip_id, @position, @title, @category, @start_time, @end_time,
		        @location, @cost, @booked, @booking_ref, @notes, @source_item_id)`

	if len(activities) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, a := range activities {
		batch.Queue(q, pgx.NamedArgs{
			"id":             a.ID,
			"trip_id":        tripID,
			"position":       i,
			"title":          a.Title,
			"category":       string(a.Category),
			"start_time":     a.StartTime,
			"end_time":       a.EndTime,
			"location":       a.Location,
			"cost":           a.Cost,
			"booked":         a.Booked,
			"booking_ref":    a.BookingRef,
			"notes":          a.Notes,
			"source_item_id": a.SourceItemID,
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert activities: %w", err)
	}
	return nil
}

func tripArgs(trip domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"destination": trip.Destination,
		"start_date":  pgtype.Date{Time: domain.DateOf(trip.StartDate), Valid: true},
		"end_date":    pgtype.Date{Time: domain.DateOf(trip.EndDate), Valid: true},
		"status":      string(trip.Status),
		"budget":      trip.Budget,
		"currency":    trip.Currency,
	}
}

// scanTrip maps a trips row into a domain.Trip without activities.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	err := s.Scan(&id, &t.Destination, &startDate, &endDate, &t.Status, &t.Budget, &t.Currency,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrTripNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time
	return t, nil
}

// assignIDs returns a copy of activities where every activity has an id.
func assignIDs(activities []domain.Activity) []domain.Activity {
	out := make([]domain.Activity, len(activities))
	for i, a := range activities {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		out[i] = a
	}
	return out
}

func nonNil(activities []domain.Activity) []domain.Activity {
	if activities == nil {
		return []domain.Activity{}
	}
	return activities
}
