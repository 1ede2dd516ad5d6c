// Package catalog owns the in-memory product catalog: the seeded product and category lists,
// the active search text and the add/update/delete mutations.
package catalog

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/source"
)

// Predefined errors for catalog operations
var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrAlreadyLoaded   = errors.New("catalog: already loaded")
	ErrClosed          = errors.New("catalog: store closed")
)

// Notifier receives a success notification after each mutation.
type Notifier interface {
	Notify(kind domain.NotificationKind, productID int64)
}

// Store is the single source of truth for products, categories and the search text.
// It is constructed once at startup and closed on shutdown; every accessor returns copies.
type Store struct {
	products   source.ProductSource
	categories source.CategorySource
	notifier   Notifier

	loadOnce sync.Once

	mu          sync.RWMutex
	catalog     []domain.Product
	categorySet []string
	searchQuery string
	status      Status
	closed      bool
}

// NewStore creates a store that seeds from the given sources. A nil notifier discards notifications.
func NewStore(ps source.ProductSource, cs source.CategorySource, n Notifier) *Store {
	if n == nil {
		n = discard{}
	}
	return &Store{
		products:    ps,
		categories:  cs,
		notifier:    n,
		catalog:     []domain.Product{},
		categorySet: []string{},
		status: Status{
			Products:   LoadState{Phase: PhasePending},
			Categories: LoadState{Phase: PhasePending},
		},
	}
}

type discard struct{}

func (discard) Notify(domain.NotificationKind, int64) {}

// AddProduct appends a product built from in and returns it.
// The id is the catalog length plus one; after a deletion this can repeat an existing id.
func (s *Store) AddProduct(in domain.ProductInput) (domain.Product, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Product{}, ErrClosed
	}
	p := in.WithID(int64(len(s.catalog)) + 1)
	s.catalog = append(s.catalog, p)
	s.mu.Unlock()

	log.Debug().Str("component", "catalog").Int64("product_id", p.ID).Msg("product added")
	s.notifier.Notify(domain.NotificationAdded, p.ID)
	return p, nil
}

// UpdateProduct replaces the first entry whose id matches p.ID.
// It returns ErrProductNotFound, without notifying, when no entry matches.
func (s *Store) UpdateProduct(p domain.Product) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	idx := -1
	for i := range s.catalog {
		if s.catalog[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrProductNotFound
	}
	next := make([]domain.Product, len(s.catalog))
	copy(next, s.catalog)
	next[idx] = p
	s.catalog = next
	s.mu.Unlock()

	log.Debug().Str("component", "catalog").Int64("product_id", p.ID).Msg("product updated")
	s.notifier.Notify(domain.NotificationUpdated, p.ID)
	return nil
}

// DeleteProduct removes every entry with the given id, keeping the order of the rest.
// It returns ErrProductNotFound, without notifying, when nothing was removed.
func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next := make([]domain.Product, 0, len(s.catalog))
	for _, p := range s.catalog {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(s.catalog) {
		s.mu.Unlock()
		return ErrProductNotFound
	}
	removed := len(s.catalog) - len(next)
	s.catalog = next
	s.mu.Unlock()

	log.Debug().Str("component", "catalog").Int64("product_id", id).Int("removed", removed).Msg("product deleted")
	s.notifier.Notify(domain.NotificationDeleted, id)
	return nil
}

// SetSearchQuery replaces the active search text.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.searchQuery = q
	s.mu.Unlock()
}

// SearchQuery returns the active search text.
func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// Products returns the catalog narrowed by the active search text, recomputed on every call.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Search(s.catalog, s.searchQuery)
}

// AllProducts returns the whole catalog in insertion order.
func (s *Store) AllProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Categories returns the category labels loaded at startup.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.categorySet))
	copy(out, s.categorySet)
	return out
}

// Close tears the store down. Later mutations fail with ErrClosed; reads keep working.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Search returns the products whose title contains q, ignoring case, in their original order.
// An empty q matches everything.
func Search(products []domain.Product, q string) []domain.Product {
	needle := strings.ToLower(q)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}
