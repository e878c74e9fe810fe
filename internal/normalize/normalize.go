// Package normalize maps each provider's native search response into the
// unified domain.ActivityItem schema.
//
// Every mapping is a pure, total function: it reads fields with gjson so that
// missing or mistyped values degrade to zero values instead of failing.
// Payload validity (is this JSON at all?) is checked by the provider client
// before the body ever reaches a normalizer.
package normalize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Func maps a raw provider response body into activity items.
// It never returns nil.
type Func func(body []byte) []domain.ActivityItem

// Registry is the table of provider tag → normalizer.
type Registry map[domain.Source]Func

// Default returns a registry holding a normalizer for every known provider.
func Default() Registry {
	return Registry{
		domain.SourceYelp:         Yelp,
		domain.SourceTicketmaster: Ticketmaster,
		domain.SourceGroupon:      Groupon,
		domain.SourceBooking:      Booking,
	}
}

// Lookup returns the normalizer for src.
func (r Registry) Lookup(src domain.Source) (Func, error) {
	fn, ok := r[src]
	if !ok || fn == nil {
		return nil, fmt.Errorf("normalize: no normalizer registered for provider %q", src)
	}
	return fn, nil
}

// Require checks that every source has a normalizer. It is called while
// wiring the aggregator so a missing mapping fails at startup, not mid-request.
func (r Registry) Require(sources ...domain.Source) error {
	var missing []string
	for _, s := range sources {
		if fn, ok := r[s]; !ok || fn == nil {
			missing = append(missing, string(s))
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("normalize: no normalizer registered for providers: %s", strings.Join(missing, ", "))
	}
	return nil
}
