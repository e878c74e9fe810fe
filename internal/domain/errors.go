package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, end time before start time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

var (
	// ErrTripNotFound is reported when no trip exists under the given id.
	ErrTripNotFound = fmt.Errorf("trip %w", ErrNotFound)

	// ErrActivityNotFound is reported when the trip has no activity with the given id.
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)

	// ErrDateOutOfRange is reported when an activity falls outside the trip's dates.
	// Dates are never clamped.
	ErrDateOutOfRange = fmt.Errorf("%w: activity date outside trip date range", ErrValidation)
)

// ErrInvalidTransition is returned when strict status transitions are enabled
// and the requested move is not part of the state machine.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDraftingDisabled is returned when no AI drafting backend is configured.
// Handlers should map this to HTTP 503.
var ErrDraftingDisabled = errors.New("itinerary drafting is not configured")

// ErrMalformedDraft is returned when a drafting backend replies with
// something that is not a usable itinerary. Handlers map it to 502.
var ErrMalformedDraft = errors.New("malformed itinerary draft")

// ErrAllProvidersFailed matches *AllProvidersFailedError via errors.Is.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ProviderErrorKind classifies a provider failure.
type ProviderErrorKind string

const (
	ProviderErrNetwork   ProviderErrorKind = "network"
	ProviderErrStatus    ProviderErrorKind = "status"
	ProviderErrMalformed ProviderErrorKind = "malformed"
	ProviderErrTimeout   ProviderErrorKind = "timeout"
)

// ProviderError is a per-provider failure. It is recorded in the aggregate
// status map and never fails a discovery call on its own.
type ProviderError struct {
	Source     Source
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider %s: %s", e.Source, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned by a discovery call when every
// configured provider failed or timed out. It carries no partial items.
type AllProvidersFailedError struct {
	Errors map[Source]error
}

func (e *AllProvidersFailedError) Error() string {
	sources := slices.Sorted(maps.Keys(e.Errors))
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, fmt.Sprintf("%s: %v", s, e.Errors[s]))
	}
	return fmt.Sprintf("%s: %s", ErrAllProvidersFailed, strings.Join(parts, "; "))
}

// Is lets callers use errors.Is(err, ErrAllProvidersFailed).
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}
