package filter

import (
	"sync"

	"storefront-catalog/internal/domain"
)

// Lister is the part of the catalog store a View reads from.
type Lister interface {
	Products() []domain.Product
}

// View holds the filter selections of one presentation and derives its list from the store.
// Nothing is cached: Products reruns the pipeline on the store's current list.
type View struct {
	store Lister

	mu       sync.RWMutex
	criteria Criteria
}

// NewView creates a view with all filters off.
func NewView(store Lister) *View {
	return &View{store: store, criteria: DefaultCriteria()}
}

// SetCategory selects a category, or domain.CategoryAll. Matching is exact and case-sensitive.
func (v *View) SetCategory(category string) {
	if category == "" {
		category = domain.CategoryAll
	}
	v.mu.Lock()
	v.criteria.Category = category
	v.mu.Unlock()
}

func (v *View) SetPriceRange(r domain.PriceRange) {
	v.mu.Lock()
	v.criteria.PriceRange = r
	v.mu.Unlock()
}

func (v *View) SetSortOrder(o domain.SortOrder) {
	v.mu.Lock()
	v.criteria.SortOrder = o
	v.mu.Unlock()
}

// Criteria returns the current selections.
func (v *View) Criteria() Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.criteria
}

// Products returns the final list for the current selections.
func (v *View) Products() []domain.Product {
	return Apply(v.store.Products(), v.Criteria())
}
