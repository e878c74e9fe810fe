package discovery

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Preferences are caller-supplied predicates applied after the merge, so they
// behave the same for every provider. Zero values disable a predicate.
type Preferences struct {
	MinPrice   float64           `json:"min_price,omitempty"`
	MaxPrice   float64           `json:"max_price,omitempty"`
	Categories []domain.Category `json:"categories,omitempty"`
	// MinRating drops items scoring below it. Items without a rating are
	// dropped whenever MinRating is positive.
	MinRating float64 `json:"min_rating,omitempty"`
}

// Validate rejects inverted or negative bounds and unknown categories.
func (p Preferences) Validate() error {
	_, err := p.Canonical()
	return err
}

// Canonical validates p and returns a copy whose categories are in their
// canonical lowercase form, with duplicates removed.
func (p Preferences) Canonical() (Preferences, error) {
	if p.MinPrice < 0 || p.MaxPrice < 0 || p.MinRating < 0 {
		return Preferences{}, fmt.Errorf("%w: price and rating bounds must be non-negative", domain.ErrValidation)
	}
	if p.MaxPrice > 0 && p.MinPrice > p.MaxPrice {
		return Preferences{}, fmt.Errorf("%w: min_price is greater than max_price", domain.ErrValidation)
	}
	if len(p.Categories) == 0 {
		return p, nil
	}
	cats := make([]domain.Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		parsed, err := domain.ParseCategory(string(c))
		if err != nil {
			return Preferences{}, err
		}
		cats = append(cats, parsed)
	}
	p.Categories = lo.Uniq(cats)
	return p, nil
}

// Apply keeps the items that satisfy every enabled predicate, in order.
func (p Preferences) Apply(items []domain.ActivityItem) []domain.ActivityItem {
	return lo.Filter(items, func(it domain.ActivityItem, _ int) bool {
		return p.Match(it)
	})
}

// Match reports whether a single item satisfies p.
func (p Preferences) Match(it domain.ActivityItem) bool {
	if it.Price.Amount < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && it.Price.Amount > p.MaxPrice {
		return false
	}
	if len(p.Categories) > 0 && !lo.ContainsBy(p.Categories, func(c domain.Category) bool {
		return strings.EqualFold(strings.TrimSpace(string(c)), string(it.Category))
	}) {
		return false
	}
	if p.MinRating > 0 && (it.Rating == nil || it.Rating.Score < p.MinRating) {
		return false
	}
	return true
}
