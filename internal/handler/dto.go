package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/samber/lo"

	"github.com/voyantiq/itinerary/internal/discovery"
	"github.com/voyantiq/itinerary/internal/domain"
)

// ---- trips -----------------------------------------------------------------

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Status      *string            `json:"status,omitempty"`
	Budget      float64            `json:"budget"`
	Currency    *string            `json:"currency,omitempty"`
	Activities  []ActivityRequest  `json:"activities,omitempty"`
}

// Trip is the wire form of a trip. Spend, Remaining, Progress and OverBudget
// are derived by the server.
type Trip struct {
	ID          uuid.UUID          `json:"id"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Status      domain.TripStatus  `json:"status"`
	Budget      float64            `json:"budget"`
	Currency    string             `json:"currency"`
	Spend       float64            `json:"spend"`
	Remaining   float64            `json:"remaining"`
	Progress    float64            `json:"progress"`
	OverBudget  bool               `json:"over_budget"`
	Activities  []domain.Activity  `json:"activities"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Pagination describes the page returned by GET /trips.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// StatusRequest is the body of PUT /trips/{tripID}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

func (b CreateTripRequest) toDomain() (domain.Trip, error) {
	t := domain.Trip{
		Destination: b.Destination,
		StartDate:   b.StartDate.Time,
		EndDate:     b.EndDate.Time,
		Budget:      b.Budget,
		Currency:    lo.FromPtr(b.Currency),
	}
	if b.Status != nil {
		st, err := domain.ParseTripStatus(*b.Status)
		if err != nil {
			return domain.Trip{}, err
		}
		t.Status = st
	}
	for _, a := range b.Activities {
		act, err := a.toDomain()
		if err != nil {
			return domain.Trip{}, err
		}
		t.Activities = append(t.Activities, act)
	}
	return t, nil
}

func tripToResponse(t domain.Trip) Trip {
	activities := t.Activities
	if activities == nil {
		activities = []domain.Activity{}
	}
	return Trip{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Status:      t.Status,
		Budget:      t.Budget,
		Currency:    t.Currency,
		Spend:       t.Spend,
		Remaining:   t.Remaining(),
		Progress:    t.Progress,
		OverBudget:  t.OverBudget(),
		Activities:  activities,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ---- activities ------------------------------------------------------------

// ActivityRequest is the body of the activity create, update and conflict
// endpoints. Category defaults to entertainment.
type ActivityRequest struct {
	Title      string    `json:"title"`
	Category   string    `json:"category,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Location   string    `json:"location,omitempty"`
	Cost       float64   `json:"cost"`
	Booked     bool      `json:"booked"`
	BookingRef string    `json:"booking_ref,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

func (b ActivityRequest) toDomain() (domain.Activity, error) {
	a := domain.Activity{
		Title:      b.Title,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Location:   b.Location,
		Cost:       b.Cost,
		Booked:     b.Booked,
		BookingRef: b.BookingRef,
		Notes:      b.Notes,
	}
	if b.Category != "" {
		c, err := domain.ParseCategory(b.Category)
		if err != nil {
			return domain.Activity{}, err
		}
		a.Category = c
	}
	return a, nil
}

// ActivityResult is returned by mutations that may surface conflicts.
// Conflicts are advisory: the mutation has already been applied.
type ActivityResult struct {
	Trip      Trip              `json:"trip"`
	Conflicts []domain.Activity `json:"conflicts"`
}

// ConflictList is the body of POST /trips/{tripID}/conflicts.
type ConflictList struct {
	Conflicts []domain.Activity `json:"conflicts"`
}

// PositionRequest is the body of PUT .../activities/{activityID}/position.
type PositionRequest struct {
	Position *int `json:"position"`
}

// CommitItemRequest is the body of POST /trips/{tripID}/items.
type CommitItemRequest struct {
	Item      domain.ActivityItem `json:"item"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
}

func activityResult(t domain.Trip, conflicts []domain.Activity) ActivityResult {
	if conflicts == nil {
		conflicts = []domain.Activity{}
	}
	return ActivityResult{Trip: tripToResponse(t), Conflicts: conflicts}
}

// ---- discovery -------------------------------------------------------------

// DiscoverRequest is the body of POST /discover.
type DiscoverRequest struct {
	Latitude     float64                `json:"latitude"`
	Longitude    float64                `json:"longitude"`
	CityID       string                 `json:"city_id,omitempty"`
	StartDate    *openapi_types.Date    `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date    `json:"end_date,omitempty"`
	RadiusMeters int                    `json:"radius_meters,omitempty"`
	Guests       int                    `json:"guests,omitempty"`
	Term         string                 `json:"term,omitempty"`
	Limit        int                    `json:"limit,omitempty"`
	Preferences  *discovery.Preferences `json:"preferences,omitempty"`
}

// ProviderStatus is the wire form of discovery.ProviderStatus.
type ProviderStatus struct {
	State      discovery.State `json:"state"`
	Items      int             `json:"items"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// DiscoverResponse is the body of POST /discover.
type DiscoverResponse struct {
	Items    []domain.ActivityItem            `json:"items"`
	Statuses map[domain.Source]ProviderStatus `json:"statuses"`
}

// DiscoverFailure is the 502 body when every provider failed.
type DiscoverFailure struct {
	Error    ErrorDetail                      `json:"error"`
	Statuses map[domain.Source]ProviderStatus `json:"statuses"`
}

func (b DiscoverRequest) toQuery() (discovery.Query, error) {
	q := discovery.Query{
		Location:     discovery.Location{Latitude: b.Latitude, Longitude: b.Longitude, CityID: b.CityID},
		RadiusMeters: b.RadiusMeters,
		Guests:       b.Guests,
		Term:         b.Term,
		Limit:        b.Limit,
		Preferences:  lo.FromPtr(b.Preferences),
	}
	if b.StartDate != nil {
		q.Dates.Start = b.StartDate.Time
	}
	if b.EndDate != nil {
		q.Dates.End = b.EndDate.Time
	}
	if err := validateDiscover(q); err != nil {
		return discovery.Query{}, err
	}
	prefs, err := q.Preferences.Canonical()
	if err != nil {
		return discovery.Query{}, err
	}
	q.Preferences = prefs
	return q, nil
}

func statusesToResponse(in map[domain.Source]discovery.ProviderStatus) map[domain.Source]ProviderStatus {
	return lo.MapValues(in, func(st discovery.ProviderStatus, _ domain.Source) ProviderStatus {
		return ProviderStatus{
			State:      st.State,
			Items:      st.Items,
			Error:      st.Error,
			DurationMS: st.Duration.Milliseconds(),
		}
	})
}

// ---- drafts ----------------------------------------------------------------

// DraftResult is the body of POST /trips/{tripID}/draft.
type DraftResult struct {
	Trip  Trip                  `json:"trip"`
	Draft domain.DraftItinerary `json:"draft"`
}
