// Package filter turns the search-filtered product list into the list a client renders.
package filter

import (
	"sort"

	"storefront-catalog/internal/domain"
)

// Criteria are the three independent filter controls.
type Criteria struct {
	Category   string            `json:"category"`
	PriceRange domain.PriceRange `json:"price_range"`
	SortOrder  domain.SortOrder  `json:"sort_order"`
}

// DefaultCriteria selects everything in input order.
func DefaultCriteria() Criteria {
	return Criteria{Category: domain.CategoryAll, PriceRange: domain.PriceRangeAll, SortOrder: domain.SortNone}
}

// Apply runs category, then price range, then sort over a copy of products.
// It never modifies its input and returns equal output for equal input.
func Apply(products []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if c.Category != "" && c.Category != domain.CategoryAll && p.Category != c.Category {
			continue
		}
		if !c.PriceRange.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}

	switch c.SortOrder {
	case domain.SortLowToHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case domain.SortHighToLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}
