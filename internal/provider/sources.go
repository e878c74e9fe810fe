package provider

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/voyantiq/itinerary/internal/domain"
)

// NewYelp returns a client for the Yelp Fusion business search.
// The key is sent as a bearer token.
func NewYelp(opts Options) Client {
	c := newHTTPClient(domain.SourceYelp, "https://api.yelp.com", opts)
	c.path = "/v3/businesses/search"
	c.params = func(q Query) url.Values {
		v := url.Values{}
		if coords(q) {
			v.Set("latitude", formatFloat(q.Latitude))
			v.Set("longitude", formatFloat(q.Longitude))
		} else {
			setIf(v, "location", q.CityID)
		}
		// Yelp rejects radii above 40km.
		setIf(v, "radius", strconv.Itoa(min(q.RadiusMeters, 40000)))
		setIf(v, "term", q.Term)
		setIf(v, "limit", strconv.Itoa(q.Limit))
		return v
	}
	c.authorize = func(req *http.Request, key string) {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return c
}

// NewTicketmaster returns a client for the Ticketmaster Discovery API event
// search. The key travels in the query string.
func NewTicketmaster(opts Options) Client {
	c := newHTTPClient(domain.SourceTicketmaster, "https://app.ticketmaster.com", opts)
	c.path = "/discovery/v2/events.json"
	c.params = func(q Query) url.Values {
		v := url.Values{}
		if coords(q) {
			v.Set("latlong", formatFloat(q.Latitude)+","+formatFloat(q.Longitude))
		}
		if q.RadiusMeters > 0 {
			v.Set("radius", strconv.Itoa(max(q.RadiusMeters/1000, 1)))
			v.Set("unit", "km")
		}
		if !q.CheckIn.IsZero() {
			v.Set("startDateTime", q.CheckIn.UTC().Format("2006-01-02T15:04:05Z"))
		}
		if !q.CheckOut.IsZero() {
			v.Set("endDateTime", q.CheckOut.UTC().Format("2006-01-02T15:04:05Z"))
		}
		setIf(v, "city", q.CityID)
		setIf(v, "keyword", q.Term)
		setIf(v, "size", strconv.Itoa(q.Limit))
		return v
	}
	c.authorize = func(req *http.Request, key string) {
		qs := req.URL.Query()
		qs.Set("apikey", key)
		req.URL.RawQuery = qs.Encode()
	}
	return c
}

// NewGroupon returns a client for the Groupon partner deals feed.
func NewGroupon(opts Options) Client {
	c := newHTTPClient(domain.SourceGroupon, "https://partner-api.groupon.com", opts)
	c.path = "/deals.json"
	c.params = func(q Query) url.Values {
		v := url.Values{}
		if coords(q) {
			v.Set("lat", formatFloat(q.Latitude))
			v.Set("lng", formatFloat(q.Longitude))
		}
		if q.RadiusMeters > 0 {
			// Groupon takes miles.
			v.Set("radius", strconv.Itoa(max(q.RadiusMeters/1609, 1)))
		}
		setIf(v, "division_id", q.CityID)
		setIf(v, "filters", q.Term)
		setIf(v, "limit", strconv.Itoa(q.Limit))
		return v
	}
	c.authorize = func(req *http.Request, key string) {
		qs := req.URL.Query()
		qs.Set("tsToken", key)
		req.URL.RawQuery = qs.Encode()
	}
	return c
}

// NewBooking returns a client for the Booking.com hotel availability search.
func NewBooking(opts Options) Client {
	c := newHTTPClient(domain.SourceBooking, "https://distribution-xml.booking.com/2.5/json", opts)
	c.path = "/hotels"
	c.params = func(q Query) url.Values {
		v := url.Values{}
		setIf(v, "city_ids", q.CityID)
		if coords(q) {
			v.Set("latitude", formatFloat(q.Latitude))
			v.Set("longitude", formatFloat(q.Longitude))
		}
		if q.RadiusMeters > 0 {
			v.Set("radius", strconv.Itoa(max(q.RadiusMeters/1000, 1)))
		}
		if !q.CheckIn.IsZero() {
			v.Set("checkin", q.CheckIn.Format("2006-01-02"))
		}
		if !q.CheckOut.IsZero() {
			v.Set("checkout", q.CheckOut.Format("2006-01-02"))
		}
		setIf(v, "room1", guests(q.Guests))
		setIf(v, "rows", strconv.Itoa(q.Limit))
		return v
	}
	c.authorize = func(req *http.Request, key string) {
		req.Header.Set("X-Api-Key", key)
	}
	return c
}

// guests renders Booking's room occupancy string ("A,A" for two adults).
func guests(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("A,", n-1) + "A"
}
