package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per activity, with trip fields
// repeated for every activity on that trip. Trips with no activities yield
// one row with zero values for all activity fields.
type ExportRow struct {
	// Trip fields, repeated for every activity on the trip.
	TripID          string
	TripDestination string
	TripStartDate   string // "2006-01-02" formatted date
	TripEndDate     string // "2006-01-02" formatted date
	TripStatus      TripStatus
	TripBudget      float64
	TripSpend       float64

	// Activity fields. Zero values when the trip has no activities.
	ActivityTitle    string
	ActivityCategory Category
	StartTime        *time.Time
	EndTime          *time.Time
	Location         string
	Cost             float64
	Booked           bool
	BookingRef       string
}
