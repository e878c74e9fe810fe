package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Ticketmaster segments are coarse; map them before the shared table so
// "Sports" events don't fall through to the default.
var ticketmasterRules = withBase(
	rule{domain.CategoryCulture, []string{"arts", "theatre", "theater", "opera", "ballet", "classical"}},
	rule{domain.CategoryEntertainment, []string{"music", "sports", "concert", "comedy", "family", "film"}},
)

// Ticketmaster maps a Discovery API event search response:
// {"_embedded": {"events": [...]}}. A response without "_embedded" is a
// valid empty result.
func Ticketmaster(body []byte) []domain.ActivityItem {
	events := gjson.GetBytes(body, "_embedded.events").Array()
	items := make([]domain.ActivityItem, 0, len(events))

	for i, e := range events {
		name := e.Get("name").String()
		venue := e.Get("_embedded.venues.0")

		item := domain.ActivityItem{
			ID:          itemID(domain.SourceTicketmaster, e.Get("id").String(), i),
			Title:       name,
			Description: joinNonEmpty(" ", e.Get("info").String(), e.Get("pleaseNote").String()),
			Category: inferCategory(ticketmasterRules,
				e.Get("classifications.0.segment.name").String(),
				e.Get("classifications.0.genre.name").String(),
				e.Get("type").String(),
				name,
			),
			Price: domain.Price{
				Amount:   amount(e.Get("priceRanges.0.min").Float()),
				Currency: e.Get("priceRanges.0.currency").String(),
			},
			Location: domain.Location{
				// Ticketmaster encodes coordinates as strings; gjson parses them.
				Latitude:  latitude(venue.Get("location.latitude").Float()),
				Longitude: longitude(venue.Get("location.longitude").Float()),
				Address: joinNonEmpty(", ",
					venue.Get("name").String(),
					venue.Get("address.line1").String(),
					venue.Get("city.name").String(),
				),
			},
			Images:     texts(e.Get("images.#.url")),
			BookingURL: e.Get("url").String(),
			Source:     domain.SourceTicketmaster,
		}
		items = append(items, item)
	}
	return items
}
