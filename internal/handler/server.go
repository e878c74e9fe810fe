// Package handler implements the HTTP API of the itinerary core.
// All handlers are methods on Server and are mounted on a chi router by
// Routes. Methods are split into resource files (trip.go, activity.go, etc.)
// but share the same Server struct so they can reach its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voyantiq/itinerary/internal/discovery"
	"github.com/voyantiq/itinerary/internal/domain"
)

// TripServicer defines the trip operations the handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without a store or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItineraryServicer defines the activity-level operations.
type ItineraryServicer interface {
	AddActivity(ctx context.Context, tripID uuid.UUID, a domain.Activity) (domain.Trip, []domain.Activity, error)
	UpdateActivity(ctx context.Context, tripID uuid.UUID, a domain.Activity) (domain.Trip, []domain.Activity, error)
	RemoveActivity(ctx context.Context, tripID, activityID uuid.UUID) (domain.Trip, error)
	Reorder(ctx context.Context, tripID, activityID uuid.UUID, position int) (domain.Trip, error)
	DetectConflicts(ctx context.Context, tripID uuid.UUID, candidate domain.Activity) ([]domain.Activity, error)
	UpdateStatus(ctx context.Context, tripID uuid.UUID, status domain.TripStatus) (domain.Trip, error)
	CommitItem(ctx context.Context, tripID uuid.UUID, item domain.ActivityItem, start, end time.Time) (domain.Trip, []domain.Activity, error)
}

// Discoverer runs a multi-provider search.
type Discoverer interface {
	Discover(ctx context.Context, q discovery.Query) (discovery.Result, error)
}

// Planner drafts itineraries with an AI backend.
type Planner interface {
	Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error)
	DraftInto(ctx context.Context, tripID uuid.UUID, req domain.DraftRequest) (domain.Trip, domain.DraftItinerary, error)
}

// Exporter produces flat and calendar exports.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
	Calendar(ctx context.Context, tripID uuid.UUID) ([]byte, error)
}

// Server holds the dependencies of every handler. Any of them may be nil in
// tests that do not exercise the matching routes.
type Server struct {
	trips     TripServicer
	itinerary ItineraryServicer
	discovery Discoverer
	planner   Planner
	export    Exporter
	spec      []byte
}

// Option customises a Server.
type Option func(*Server)

// WithSpec serves the given OpenAPI document at GET /openapi.yaml.
func WithSpec(spec []byte) Option {
	return func(s *Server) { s.spec = spec }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, itinerary ItineraryServicer, disc Discoverer, planner Planner, export Exporter, opts ...Option) *Server {
	s := &Server{trips: trips, itinerary: itinerary, discovery: disc, planner: planner, export: export}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetSpec)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)
			r.Put("/status", s.UpdateTripStatus)
			r.Post("/activities", s.AddActivity)
			r.Put("/activities/{activityID}", s.UpdateActivity)
			r.Delete("/activities/{activityID}", s.RemoveActivity)
			r.Put("/activities/{activityID}/position", s.ReorderActivity)
			r.Post("/conflicts", s.DetectConflicts)
			r.Post("/items", s.CommitItem)
			r.Post("/draft", s.DraftIntoTrip)
			r.Get("/calendar.ics", s.GetCalendar)
		})
	})

	r.Post("/discover", s.Discover)
	r.Post("/drafts", s.CreateDraft)
	r.Get("/export", s.GetExport)
}

// Handler returns a router with every endpoint mounted and no middleware.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
