package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/voyantiq/itinerary/internal/domain"
)

// rule maps a set of keywords to a category. Rules are evaluated in order and
// the first rule with a matching keyword wins.
type rule struct {
	category domain.Category
	keywords []string
}

// baseRules is shared by every provider. Provider-specific tables are
// prepended to it.
var baseRules = []rule{
	{domain.CategoryTransport, []string{"transfer", "shuttle", "airport", "train", "ferry", "taxi", "transit", "rental"}},
	{domain.CategoryDining, []string{
		"restaurant", "cafe", "café", "coffee", "bar", "pub", "bistro", "brasserie", "diner", "grill",
		"bakery", "food", "dinner", "lunch", "brunch", "breakfast", "pizza", "sushi", "tapas", "wine",
		"steakhouse", "kitchen", "eatery", "buffet", "tasting",
	}},
	{domain.CategoryRelaxation, []string{"spa", "massage", "wellness", "yoga", "sauna", "beach", "resort", "retreat", "hotel"}},
	{domain.CategoryAdventure, []string{
		"hike", "hiking", "kayak", "kayaking", "climbing", "rafting", "zipline", "surf", "surfing",
		"diving", "skydiving", "paragliding", "safari", "cycling", "ski", "skiing", "adventure",
	}},
	{domain.CategoryCulture, []string{
		"museum", "gallery", "art", "arts", "theatre", "theater", "opera", "ballet", "history",
		"historic", "heritage", "cathedral", "church", "temple", "exhibition",
	}},
	{domain.CategoryShopping, []string{"shop", "shopping", "market", "mall", "boutique", "outlet", "store"}},
	{domain.CategorySightseeing, []string{
		"tour", "sightseeing", "landmark", "monument", "viewpoint", "cruise", "park", "castle",
		"palace", "garden", "walking",
	}},
	{domain.CategoryEntertainment, []string{"concert", "music", "festival", "show", "comedy", "nightclub", "cinema", "movie"}},
}

// inferCategory case-folds fields, splits them into words and returns the
// category of the first rule with a keyword among those words. Plural forms
// ("museums", "beaches") match their singular keyword. Unmatched input gets
// domain.DefaultCategory.
func inferCategory(rules []rule, fields ...string) domain.Category {
	words := tokenize(fields...)
	if len(words) == 0 {
		return domain.DefaultCategory
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if words[kw] {
				return r.category
			}
		}
	}
	return domain.DefaultCategory
}

// tokenize returns the set of case-folded words in fields, with "s"/"es"
// plural suffixes also recorded in stripped form.
// A fresh Caser is built per call: cases.Caser is stateful and normalizers
// run concurrently.
func tokenize(fields ...string) map[string]bool {
	folded := cases.Fold().String(strings.Join(fields, " "))
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
		if trimmed, ok := strings.CutSuffix(w, "es"); ok && len(trimmed) > 2 {
			words[trimmed] = true
		}
		if trimmed, ok := strings.CutSuffix(w, "s"); ok && len(trimmed) > 2 {
			words[trimmed] = true
		}
	}
	return words
}

func withBase(specific ...rule) []rule {
	out := make([]rule, 0, len(specific)+len(baseRules))
	out = append(out, specific...)
	return append(out, baseRules...)
}
