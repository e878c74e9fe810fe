package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

var yelpRules = withBase(rule{domain.CategoryDining, []string{
	"italian", "mexican", "thai", "chinese", "japanese", "korean", "vietnamese", "french", "indian",
	"mediterranean", "seafood", "vegan", "vegetarian", "bbq", "burger", "burgers", "noodles", "ramen",
	"taco", "tacos", "dessert", "desserts", "icecream", "gelato", "tea",
}})

// yelpPriceTiers estimates a per-person spend in USD for Yelp's "$" tiers.
var yelpPriceTiers = map[string]float64{
	"$":    15,
	"$$":   35,
	"$$$":  70,
	"$$$$": 120,
}

// Yelp maps a Yelp business search response: {"businesses": [...]}.
func Yelp(body []byte) []domain.ActivityItem {
	businesses := gjson.GetBytes(body, "businesses").Array()
	items := make([]domain.ActivityItem, 0, len(businesses))

	for i, b := range businesses {
		categoryTitles := texts(b.Get("categories.#.title"))
		categoryAliases := texts(b.Get("categories.#.alias"))
		name := b.Get("name").String()

		item := domain.ActivityItem{
			ID:          itemID(domain.SourceYelp, b.Get("id").String(), i),
			Title:       name,
			Description: strings.Join(categoryTitles, ", "),
			Category: inferCategory(yelpRules,
				name, strings.Join(categoryTitles, " "), strings.Join(categoryAliases, " ")),
			Location: domain.Location{
				Latitude:  latitude(b.Get("coordinates.latitude").Float()),
				Longitude: longitude(b.Get("coordinates.longitude").Float()),
				Address:   yelpAddress(b),
			},
			Rating:     rating(b.Get("rating"), b.Get("review_count")),
			Images:     texts(b.Get("photos")),
			BookingURL: b.Get("url").String(),
			Source:     domain.SourceYelp,
		}
		if tier, ok := yelpPriceTiers[strings.TrimSpace(b.Get("price").String())]; ok {
			item.Price = domain.Price{Amount: tier, Currency: "USD"}
		}
		if len(item.Images) == 0 {
			if img := b.Get("image_url").String(); img != "" {
				item.Images = []string{img}
			}
		}
		items = append(items, item)
	}
	return items
}

func yelpAddress(b gjson.Result) string {
	if display := texts(b.Get("location.display_address")); len(display) > 0 {
		return strings.Join(display, ", ")
	}
	return joinNonEmpty(", ",
		b.Get("location.address1").String(),
		b.Get("location.city").String(),
		joinNonEmpty(" ", b.Get("location.state").String(), b.Get("location.zip_code").String()),
	)
}
