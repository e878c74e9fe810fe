package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Lodging has no category of its own; property types map to relaxation.
var bookingRules = append([]rule{{domain.CategoryRelaxation, []string{
	"hotel", "resort", "inn", "hostel", "apartment", "lodge", "suite", "guesthouse", "villa", "motel", "spa",
}}}, baseRules...)

// Booking maps a hotel search response: {"hotels": [...]}.
func Booking(body []byte) []domain.ActivityItem {
	hotels := gjson.GetBytes(body, "hotels").Array()
	items := make([]domain.ActivityItem, 0, len(hotels))

	for i, h := range hotels {
		name := h.Get("name").String()
		amenities := texts(h.Get("amenities"))

		item := domain.ActivityItem{
			ID:          itemID(domain.SourceBooking, h.Get("id").String(), i),
			Title:       name,
			Description: h.Get("description").String(),
			Category: inferCategory(bookingRules,
				name, h.Get("propertyType").String(), strings.Join(amenities, " ")),
			Price: domain.Price{
				Amount:   amount(first(h, "price.amount", "price").Float()),
				Currency: h.Get("price.currency").String(),
			},
			Location: domain.Location{
				Latitude:  latitude(first(h, "latitude", "location.latitude").Float()),
				Longitude: longitude(first(h, "longitude", "location.longitude").Float()),
				Address:   h.Get("address").String(),
			},
			Rating:     rating(h.Get("rating"), h.Get("reviewCount")),
			Images:     texts(h.Get("images")),
			BookingURL: h.Get("url").String(),
			Source:     domain.SourceBooking,
		}
		if item.Description == "" {
			item.Description = strings.Join(amenities, ", ")
		}
		items = append(items, item)
	}
	return items
}
