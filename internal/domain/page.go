package domain

import "github.com/samber/lo"

// Page size bounds for trip listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams selects one page of a trip listing. Page is 1-based.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from optional query values.
// Missing or non-positive values take the defaults (page 1, limit 20) and
// the limit is clamped to MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = lo.Clamp(*limit, 1, MaxPageLimit)
	}
	return p
}

// Offset is the number of trips before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Bounds returns the half-open index range [start, end) of this page within
// a list of n trips. Pages past the end yield an empty range.
func (p PaginationParams) Bounds(n int) (start, end int) {
	start = min(p.Offset(), n)
	return start, min(start+p.Limit, n)
}
