package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/voyantiq/itinerary/internal/domain"
)

// itemID prefixes the provider's own id with the source tag so ids stay
// unique across providers. Items without an id get a positional one.
func itemID(src domain.Source, raw string, index int) string {
	if raw = strings.TrimSpace(raw); raw == "" {
		return fmt.Sprintf("%s:%d", src, index)
	}
	return fmt.Sprintf("%s:%s", src, raw)
}

// amount clamps negative or non-finite prices to zero.
func amount(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

// latitude and longitude zero coordinates that are non-finite or out of range.
func latitude(v float64) float64  { return coordinate(v, 90) }
func longitude(v float64) float64 { return coordinate(v, 180) }

func coordinate(v, limit float64) float64 {
	if !finite(v) || math.Abs(v) > limit {
		return 0
	}
	return v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// texts collects the non-empty string values of an array result.
func texts(res gjson.Result) []string {
	out := []string{}
	for _, v := range res.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// first returns the first path of paths that exists in res.
func first(res gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// rating builds a Rating only when the score field is present.
func rating(score, count gjson.Result) *domain.Rating {
	if !score.Exists() || score.Type == gjson.Null {
		return nil
	}
	return &domain.Rating{Score: amount(score.Float()), Count: int(max(count.Int(), 0))}
}
