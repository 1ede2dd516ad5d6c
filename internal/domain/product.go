package domain

import (
	"fmt"
	"time"
)

// Product represents a product in the catalog.
// The json tags match the upstream catalog API wire format.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"` // data URI for user-entered products, remote URL for seeded ones
}

// ProductInput is the payload of an "add product" action. The id is assigned by the catalog.
type ProductInput struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Price       float64 `json:"price" validate:"gt=0,integral"`
	Category    string  `json:"category" validate:"required,min=3"`
	Description string  `json:"description" validate:"required,min=3"`
	Image       string  `json:"image" validate:"required,datauri|url"`
}

// WithID builds the catalog entry for an input.
func (in ProductInput) WithID(id int64) Product {
	return Product{
		ID:          id,
		Title:       in.Title,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
	}
}

// Input strips the id off a product, used to validate update payloads with the same rules as add.
func (p Product) Input() ProductInput {
	return ProductInput{
		Title:       p.Title,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
	}
}

// PriceRange is one of four mutually exclusive price bands.
type PriceRange string

const (
	PriceRangeAll     PriceRange = "all"
	PriceRangeUnder10 PriceRange = "under10"
	PriceRange10To50  PriceRange = "10to50"
	PriceRangeAbove50 PriceRange = "above50"
)

// Contains reports whether price falls in the band.
// under10 is price < 10, 10to50 is 10 <= price <= 50, above50 is price > 50.
func (r PriceRange) Contains(price float64) bool {
	switch r {
	case PriceRangeUnder10:
		return price < 10
	case PriceRange10To50:
		return price >= 10 && price <= 50
	case PriceRangeAbove50:
		return price > 50
	default:
		return true
	}
}

// ParsePriceRange converts a selector value. An empty string means "all".
func ParsePriceRange(s string) (PriceRange, error) {
	switch r := PriceRange(s); r {
	case "":
		return PriceRangeAll, nil
	case PriceRangeAll, PriceRangeUnder10, PriceRange10To50, PriceRangeAbove50:
		return r, nil
	}
	return "", fmt.Errorf("invalid price range %q: allowed all, under10, 10to50, above50", s)
}

// SortOrder orders the filtered list by price.
type SortOrder string

const (
	SortNone      SortOrder = "none"
	SortLowToHigh SortOrder = "lowToHigh"
	SortHighToLow SortOrder = "highToLow"
)

// ParseSortOrder converts a selector value. An empty string means "none".
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortNone, nil
	case SortNone, SortLowToHigh, SortHighToLow:
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order %q: allowed none, lowToHigh, highToLow", s)
}

// CategoryAll is the category selector value that disables category filtering.
const CategoryAll = "all"

// NotificationKind names the mutation a notification reports.
type NotificationKind string

const (
	NotificationAdded   NotificationKind = "added"
	NotificationUpdated NotificationKind = "updated"
	NotificationDeleted NotificationKind = "deleted"
)

// Notification is a transient success message emitted after a catalog mutation.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	ProductID int64            `json:"product_id"`
	Message   string           `json:"message"`
	At        time.Time        `json:"at"`
}
