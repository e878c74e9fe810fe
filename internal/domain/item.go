package domain

import (
	"fmt"
	"strings"
)

// Category is the closed set of activity kinds shared by discovery results
// and scheduled activities.
type Category string

const (
	CategorySightseeing   Category = "sightseeing"
	CategoryDining        Category = "dining"
	CategoryAdventure     Category = "adventure"
	CategoryRelaxation    Category = "relaxation"
	CategoryCulture       Category = "culture"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryTransport     Category = "transport"
)

// DefaultCategory is assigned to anything no heuristic could classify.
const DefaultCategory = CategoryEntertainment

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategorySightseeing, CategoryDining, CategoryAdventure, CategoryRelaxation,
	CategoryCulture, CategoryShopping, CategoryEntertainment, CategoryTransport,
}

// ParseCategory validates a category string (case-insensitive).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// Source tags the travel-data provider an item came from.
type Source string

const (
	SourceYelp         Source = "yelp"         // dining
	SourceTicketmaster Source = "ticketmaster" // ticketed events
	SourceGroupon      Source = "groupon"      // deals
	SourceBooking      Source = "booking"      // lodging
)

// Sources lists every provider the core knows how to talk to.
var Sources = []Source{SourceYelp, SourceTicketmaster, SourceGroupon, SourceBooking}

// ParseSource validates a provider tag (case-insensitive).
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Sources {
		if src == known {
			return src, nil
		}
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrValidation, s)
}

// Price is a non-negative amount in a currency. Currency is empty when the
// provider did not report one.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Location is a geocoded place.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Rating is an aggregate review score.
type Rating struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// AffiliateData carries tracking metadata for partner bookings.
type AffiliateData struct {
	ProgramID  string  `json:"program_id"`
	TrackingID string  `json:"tracking_id"`
	Commission float64 `json:"commission"`
}

// ActivityItem is the provider-agnostic discovery result.
type ActivityItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    Category       `json:"category"`
	Price       Price          `json:"price"`
	Location    Location       `json:"location"`
	Rating      *Rating        `json:"rating,omitempty"`
	Images      []string       `json:"images"`
	BookingURL  string         `json:"booking_url,omitempty"`
	Source      Source         `json:"source"`
	Affiliate   *AffiliateData `json:"affiliate,omitempty"`
}
