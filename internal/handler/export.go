// Package handler: export.go implements GET /export and the per-trip
// calendar feed. The flat export supports ?format=csv (CSV) or the default
// JSON.
package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/voyantiq/itinerary/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "destination", "trip_start_date", "trip_end_date", "trip_status",
	"trip_budget", "trip_spend", "activity_title", "activity_category",
	"start_time", "end_time", "location", "cost", "booked", "booking_ref",
}

// ExportRow is the JSON form of domain.ExportRow. Empty activity fields are omitted.
type ExportRow struct {
	TripID           string            `json:"trip_id"`
	Destination      string            `json:"destination"`
	TripStartDate    string            `json:"trip_start_date"`
	TripEndDate      string            `json:"trip_end_date"`
	TripStatus       domain.TripStatus `json:"trip_status"`
	TripBudget       float64           `json:"trip_budget"`
	TripSpend        float64           `json:"trip_spend"`
	ActivityTitle    string            `json:"activity_title,omitempty"`
	ActivityCategory domain.Category   `json:"activity_category,omitempty"`
	StartTime        *time.Time        `json:"start_time,omitempty"`
	EndTime          *time.Time        `json:"end_time,omitempty"`
	Location         string            `json:"location,omitempty"`
	Cost             float64           `json:"cost"`
	Booked           bool              `json:"booked"`
	BookingRef       string            `json:"booking_ref,omitempty"`
}

// GetExport handles GET /export.
// It returns one row per activity across all trips.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryParam(w, r, "format", &format) {
		return
	}
	f := lo.FromPtrOr(format, "json")
	if f != "json" && f != "csv" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(fmt.Sprintf("unsupported format %q", f)))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if f == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(rows, func(r domain.ExportRow, _ int) ExportRow { return toExportRow(r) }))
}

// GetCalendar handles GET /trips/{tripID}/calendar.ics.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	body, err := s.export.Calendar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.ics"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes domain rows as CSV, header first.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(toCSVRecord(r))
	}
	w.Flush()
	return &buf
}

func toExportRow(r domain.ExportRow) ExportRow {
	return ExportRow{
		TripID:           r.TripID,
		Destination:      r.TripDestination,
		TripStartDate:    r.TripStartDate,
		TripEndDate:      r.TripEndDate,
		TripStatus:       r.TripStatus,
		TripBudget:       r.TripBudget,
		TripSpend:        r.TripSpend,
		ActivityTitle:    r.ActivityTitle,
		ActivityCategory: r.ActivityCategory,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Location:         r.Location,
		Cost:             r.Cost,
		Booked:           r.Booked,
		BookingRef:       r.BookingRef,
	}
}

// toCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func toCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.TripDestination,
		r.TripStartDate,
		r.TripEndDate,
		string(r.TripStatus),
		formatAmount(r.TripBudget),
		formatAmount(r.TripSpend),
		r.ActivityTitle,
		string(r.ActivityCategory),
		formatOptionalTime(r.StartTime),
		formatOptionalTime(r.EndTime),
		r.Location,
		formatAmount(r.Cost),
		strconv.FormatBool(r.Booked),
		r.BookingRef,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
