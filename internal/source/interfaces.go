// Package source fetches the seed catalog from an upstream system.
package source

import (
	"context"

	"storefront-catalog/internal/domain"
)

// ProductSource defines the upstream read for the product list.
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// CategorySource defines the upstream read for the category list.
type CategorySource interface {
	FetchCategories(ctx context.Context) ([]string, error)
}

// Source serves both lists, as both upstream implementations do.
type Source interface {
	ProductSource
	CategorySource
}
