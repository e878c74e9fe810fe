// Package discovery fans a search out to every configured provider, maps the
// responses through their normalizers and merges the results.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/normalize"
	"github.com/voyantiq/itinerary/internal/provider"
)

// DefaultTimeout bounds each provider call when none is configured.
const DefaultTimeout = 5 * time.Second

// State is the outcome of one provider call.
type State string

const (
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateTimeout State = "timeout"
)

// Location is where to search. Coordinates win over CityID for providers
// that take both.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CityID    string  `json:"city_id,omitempty"`
}

// DateRange is the window of the stay or visit.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Upper bounds accepted for the numeric fields of a Query.
const (
	MaxRadiusMeters = 100_000
	MaxGuests       = 30
	MaxLimit        = 100
)

// Query is the input of Discover.
type Query struct {
	Location     Location
	Dates        DateRange
	RadiusMeters int
	Guests       int
	Term         string
	Limit        int
	Preferences  Preferences
}

// ProviderStatus reports how one provider fared. Items counts what the
// provider returned before preference filtering.
type ProviderStatus struct {
	State    State         `json:"state"`
	Items    int           `json:"items"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// Result is the merged output of a discovery call.
type Result struct {
	Items    []domain.ActivityItem            `json:"items"`
	Statuses map[domain.Source]ProviderStatus `json:"statuses"`
}

// Aggregator runs discovery across a fixed set of providers.
type Aggregator struct {
	clients     []provider.Client
	normalizers []normalize.Func
	timeout     time.Duration
	limit       int
	logger      *slog.Logger
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the per-provider timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithConcurrency caps how many provider calls run at once. The default runs
// every provider concurrently.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithLogger sets the logger used for provider failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator wires clients to their normalizers. Merge order follows the
// order of clients. It fails when a client has no normalizer or two clients
// share a source.
func NewAggregator(clients []provider.Client, registry normalize.Registry, opts ...Option) (*Aggregator, error) {
	if len(clients) == 0 {
		return nil, errors.New("discovery.NewAggregator: no providers configured")
	}

	sources := lo.Map(clients, func(c provider.Client, _ int) domain.Source { return c.Source() })
	if dups := lo.FindDuplicates(sources); len(dups) > 0 {
		return nil, fmt.Errorf("discovery.NewAggregator: duplicate providers: %v", dups)
	}
	if err := registry.Require(sources...); err != nil {
		return nil, fmt.Errorf("discovery.NewAggregator: %w", err)
	}

	a := &Aggregator{
		clients:     clients,
		normalizers: lo.Map(sources, func(s domain.Source, _ int) normalize.Func { return registry[s] }),
		timeout:     DefaultTimeout,
		limit:       len(clients),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Sources returns the configured providers in merge order.
func (a *Aggregator) Sources() []domain.Source {
	return lo.Map(a.clients, func(c provider.Client, _ int) domain.Source { return c.Source() })
}

type outcome struct {
	items    []domain.ActivityItem
	err      error
	duration time.Duration
}

// Discover queries every provider concurrently and waits for all of them,
// each bounded by its own timeout. Failed providers contribute no items and
// are reported in Statuses. When every provider fails Discover returns a
// *domain.AllProvidersFailedError and no items.
func (a *Aggregator) Discover(ctx context.Context, q Query) (Result, error) {
	pq := provider.Query{
		Latitude:     q.Location.Latitude,
		Longitude:    q.Location.Longitude,
		RadiusMeters: q.RadiusMeters,
		CityID:       q.Location.CityID,
		CheckIn:      q.Dates.Start,
		CheckOut:     q.Dates.End,
		Guests:       q.Guests,
		Term:         q.Term,
		Limit:        q.Limit,
	}

	// Each goroutine writes only its own slot.
	outcomes := make([]outcome, len(a.clients))
	var g errgroup.Group
	g.SetLimit(a.limit)
	for i, c := range a.clients {
		g.Go(func() error {
			outcomes[i] = a.call(ctx, c, a.normalizers[i], pq)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Items: []domain.ActivityItem{}, Statuses: make(map[domain.Source]ProviderStatus, len(a.clients))}
	failed := make(map[domain.Source]error)
	for i, c := range a.clients {
		o := outcomes[i]
		st := ProviderStatus{State: StateSuccess, Items: len(o.items), Duration: o.duration}
		if o.err != nil {
			st.State = stateOf(o.err)
			st.Error = o.err.Error()
			failed[c.Source()] = o.err
			a.logger.WarnContext(ctx, "provider failed",
				"source", c.Source(),
				"state", st.State,
				"duration", o.duration,
				"error", o.err,
			)
		}
		res.Statuses[c.Source()] = st
		res.Items = append(res.Items, o.items...)
	}

	if len(failed) == len(a.clients) {
		return Result{Statuses: res.Statuses}, &domain.AllProvidersFailedError{Errors: failed}
	}

	res.Items = q.Preferences.Apply(res.Items)
	return res, nil
}

func (a *Aggregator) call(ctx context.Context, c provider.Client, fn normalize.Func, q provider.Query) outcome {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type reply struct {
		body []byte
		err  error
	}
	replies := make(chan reply, 1)
	start := time.Now()
	go func() {
		body, err := c.Search(ctx, q)
		replies <- reply{body, err}
	}()

	// The timeout bounds the call even if a client ignores its context.
	var r reply
	select {
	case r = <-replies:
	case <-ctx.Done():
		kind := domain.ProviderErrNetwork
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = domain.ProviderErrTimeout
		}
		r.err = &domain.ProviderError{Source: c.Source(), Kind: kind, Err: ctx.Err()}
	}
	elapsed := time.Since(start)
	if r.err != nil {
		return outcome{err: r.err, duration: elapsed}
	}
	return outcome{items: fn(r.body), duration: elapsed}
}

func stateOf(err error) State {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.Kind == domain.ProviderErrTimeout {
		return StateTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StateTimeout
	}
	return StateFailure
}
