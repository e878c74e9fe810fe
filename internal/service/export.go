package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/repo"
)

// ExportService assembles flat exports of every trip and calendar feeds of
// single trips.
type ExportService struct {
	trips repo.TripStore
	now   func() time.Time
}

// NewExportService constructs an ExportService backed by the provided store.
func NewExportService(trips repo.TripStore) *ExportService {
	return &ExportService{trips: trips, now: time.Now}
}

// Export returns one ExportRow per activity across all trips, in list order.
// Trips with no activities contribute one row with empty activity fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, t := range trips {
		base := domain.ExportRow{
			TripID:          t.ID.String(),
			TripDestination: t.Destination,
			TripStartDate:   t.StartDate.Format(time.DateOnly),
			TripEndDate:     t.EndDate.Format(time.DateOnly),
			TripStatus:      t.Status,
			TripBudget:      t.Budget,
			TripSpend:       t.Spend,
		}
		if len(t.Activities) == 0 {
			rows = append(rows, base)
			continue
		}
		rows = append(rows, lo.Map(t.Activities, func(a domain.Activity, _ int) domain.ExportRow {
			row := base
			row.ActivityTitle = a.Title
			row.ActivityCategory = a.Category
			row.StartTime = lo.ToPtr(a.StartTime)
			row.EndTime = lo.ToPtr(a.EndTime)
			row.Location = a.Location
			row.Cost = a.Cost
			row.Booked = a.Booked
			row.BookingRef = a.BookingRef
			return row
		})...)
	}
	return rows, nil
}

// Calendar renders the trip's activities as an iCalendar (RFC 5545) feed.
// Booked activities are CONFIRMED, the rest TENTATIVE.
func (s *ExportService) Calendar(ctx context.Context, tripID uuid.UUID) ([]byte, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Calendar: %w", err)
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Voyant//Itinerary//EN")
	cal.SetXWRCalName(trip.Destination)

	for _, a := range trip.Activities {
		ev := cal.AddEvent(fmt.Sprintf("%s@%s", a.ID, trip.ID))
		ev.SetDtStampTime(stamp)
		ev.SetModifiedAt(trip.UpdatedAt)
		ev.SetStartAt(a.StartTime)
		ev.SetEndAt(a.EndTime)
		ev.SetSummary(a.Title)
		if a.Location != "" {
			ev.SetLocation(a.Location)
		}
		if desc := activityDescription(a, trip.Currency); desc != "" {
			ev.SetDescription(desc)
		}
		if a.Booked {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			ev.SetStatus(ics.ObjectStatusTentative)
		}
	}
	return []byte(cal.Serialize()), nil
}

func activityDescription(a domain.Activity, currency string) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Category: %s", a.Category))
	if a.Cost > 0 {
		parts = append(parts, fmt.Sprintf("Cost: %.2f %s", a.Cost, currency))
	}
	if a.BookingRef != "" {
		parts = append(parts, "Booking ref: "+a.BookingRef)
	}
	if a.Notes != "" {
		parts = append(parts, a.Notes)
	}
	return strings.Join(parts, "\n")
}
