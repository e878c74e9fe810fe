package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

var grouponRules = withBase()

// Groupon maps a deals response: {"deals": [...]}.
// Deals without a redemption location keep a zero Location.
func Groupon(body []byte) []domain.ActivityItem {
	deals := gjson.GetBytes(body, "deals").Array()
	items := make([]domain.ActivityItem, 0, len(deals))

	for i, d := range deals {
		title := d.Get("title").String()
		description := first(d, "shortAnnouncementTitle", "announcementTitle").String()
		place := first(d, "redemptionLocation", "options.0.redemptionLocations.0")
		merchant := d.Get("merchant")

		item := domain.ActivityItem{
			ID:          itemID(domain.SourceGroupon, d.Get("id").String(), i),
			Title:       title,
			Description: description,
			Category:    inferCategory(grouponRules, title, description),
			Price: domain.Price{
				Amount:   amount(d.Get("price.amount").Float()),
				Currency: d.Get("price.currencyCode").String(),
			},
			Location: domain.Location{
				Latitude:  latitude(place.Get("lat").Float()),
				Longitude: longitude(place.Get("lng").Float()),
				Address:   joinNonEmpty(", ", place.Get("streetAddress1").String(), place.Get("city").String()),
			},
			Rating:     rating(merchant.Get("ratings"), merchant.Get("reviewsCount")),
			Images:     texts(first(d, "images", "imageUrls")),
			BookingURL: first(d, "dealUrl", "merchant.websiteUrl").String(),
			Source:     domain.SourceGroupon,
		}
		if len(item.Images) == 0 {
			if img := d.Get("imageUrl").String(); img != "" {
				item.Images = []string{img}
			}
		}
		if aff := d.Get("affiliate"); aff.IsObject() {
			item.Affiliate = &domain.AffiliateData{
				ProgramID:  aff.Get("programId").String(),
				TrackingID: aff.Get("trackingId").String(),
				Commission: amount(aff.Get("commission").Float()),
			}
		}
		items = append(items, item)
	}
	return items
}
