package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a scheduled, priced commitment inside a trip.
// Its position in Trip.Activities is display order and is independent of StartTime.
type Activity struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Category     Category  `json:"category"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Location     string    `json:"location,omitempty"`
	Cost         float64   `json:"cost"`
	Booked       bool      `json:"booked"`
	BookingRef   string    `json:"booking_ref,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	SourceItemID string    `json:"source_item_id,omitempty"`
}

// Overlaps reports whether the half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Touching endpoints do not overlap.
func Overlaps(a, b Activity) bool {
	return a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
}

// SameDate reports whether both activities start on the same calendar date.
func SameDate(a, b Activity) bool {
	return DateOf(a.StartTime).Equal(DateOf(b.StartTime))
}

// DetectConflicts returns every activity of trip that starts on the same date as
// candidate and whose interval intersects it. An activity sharing the
// candidate's id is skipped, so a reschedule never conflicts with itself.
func DetectConflicts(trip Trip, candidate Activity) []Activity {
	conflicts := []Activity{}
	for _, existing := range trip.Activities {
		if candidate.ID != uuid.Nil && existing.ID == candidate.ID {
			continue
		}
		if SameDate(existing, candidate) && Overlaps(existing, candidate) {
			conflicts = append(conflicts, existing)
		}
	}
	return conflicts
}
