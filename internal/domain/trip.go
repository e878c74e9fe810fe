// Package domain contains the core data types for the itinerary core.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, discovery, handler).
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripStatusPlanning   TripStatus = "planning"
	TripStatusUpcoming   TripStatus = "upcoming"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// ParseTripStatus validates a status string. Matching is case-insensitive and
// accepts "in-progress" as well as "in_progress".
func ParseTripStatus(s string) (TripStatus, error) {
	norm := TripStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch norm {
	case TripStatusPlanning, TripStatusUpcoming, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return norm, nil
	}
	return "", fmt.Errorf("%w: unknown trip status %q", ErrValidation, s)
}

// strictTransitions lists the forward moves allowed when strict status
// transitions are enabled. Cancellation is reachable from any non-terminal state.
var strictTransitions = map[TripStatus][]TripStatus{
	TripStatusPlanning:   {TripStatusUpcoming, TripStatusCancelled},
	TripStatusUpcoming:   {TripStatusInProgress, TripStatusCancelled},
	TripStatusInProgress: {TripStatusCompleted, TripStatusCancelled},
}

// CanTransition reports whether from → to is a legal move in the strict
// state machine. Staying in the same state is always allowed.
func CanTransition(from, to TripStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(strictTransitions[from], to)
}

// Trip is the top-level aggregate; activities belong to exactly one trip.
// Spend and Progress are derived and must only be set by Recompute.
type Trip struct {
	ID          uuid.UUID  `json:"id"`
	Destination string     `json:"destination"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Status      TripStatus `json:"status"`
	Budget      float64    `json:"budget"`
	Currency    string     `json:"currency"`
	Spend       float64    `json:"spend"`
	Progress    float64    `json:"progress"`
	Activities  []Activity `json:"activities"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Recompute refreshes Spend and Progress from the activity list.
// Progress is 0 for a trip with no activities, never NaN.
func (t *Trip) Recompute() {
	var spend float64
	var booked int
	for _, a := range t.Activities {
		spend += a.Cost
		if a.Booked {
			booked++
		}
	}
	t.Spend = spend
	if len(t.Activities) == 0 {
		t.Progress = 0
		return
	}
	t.Progress = float64(booked) / float64(len(t.Activities))
}

// Remaining returns the unspent budget. Negative when the trip is over budget.
func (t Trip) Remaining() float64 {
	return t.Budget - t.Spend
}

// OverBudget reports whether spend exceeds the budget.
func (t Trip) OverBudget() bool {
	return t.Spend > t.Budget
}

// CoversDate reports whether the calendar date of ts lies within
// [StartDate, EndDate]. Only the date component is compared.
func (t Trip) CoversDate(ts time.Time) bool {
	d := DateOf(ts)
	return !d.Before(DateOf(t.StartDate)) && !d.After(DateOf(t.EndDate))
}

// IndexOf returns the position of the activity with the given id, or -1.
func (t Trip) IndexOf(id uuid.UUID) int {
	return slices.IndexFunc(t.Activities, func(a Activity) bool { return a.ID == id })
}

// Clone returns a copy of t that shares no mutable state with the original.
func (t Trip) Clone() Trip {
	c := t
	c.Activities = slices.Clone(t.Activities)
	if c.Activities == nil {
		c.Activities = []Activity{}
	}
	return c
}

// DateOf returns the calendar date of ts, read in ts's own location, as UTC
// midnight. Dates from different locations compare by calendar day.
func DateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
