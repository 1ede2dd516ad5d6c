package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"storefront-catalog/internal/domain"
)

// Phase is the lifecycle of one seeded list.
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// LoadState describes how a list got (or failed to get) its contents.
type LoadState struct {
	Phase    Phase     `json:"phase"`
	Reason   string    `json:"reason,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Status reports both lists.
type Status struct {
	Products   LoadState `json:"products"`
	Categories LoadState `json:"categories"`
}

// Available is false until the product list loads, and stays false if it failed.
// An empty but loaded catalog is available.
func (st Status) Available() bool {
	return st.Products.Phase == PhaseReady
}

// LoadResult carries the outcome of both fetches.
type LoadResult struct {
	ProductsErr   error
	CategoriesErr error
}

// Err returns the first failure, products first.
func (r LoadResult) Err() error {
	if r.ProductsErr != nil {
		return r.ProductsErr
	}
	return r.CategoriesErr
}

// Load fetches products and categories concurrently and replaces each list wholesale on success.
// A failed fetch is not retried: its list stays empty and its state becomes PhaseFailed.
// Only the first call fetches; later calls return ErrAlreadyLoaded in both fields.
func (s *Store) Load(ctx context.Context) LoadResult {
	res := LoadResult{ProductsErr: ErrAlreadyLoaded, CategoriesErr: ErrAlreadyLoaded}
	s.loadOnce.Do(func() {
		res = s.load(ctx)
	})
	return res
}

func (s *Store) load(ctx context.Context) LoadResult {
	var res LoadResult
	// errors are recorded per list, so neither fetch cancels the other
	var eg errgroup.Group

	eg.Go(func() error {
		products, err := s.products.FetchProducts(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			res.ProductsErr = err
			s.status.Products = LoadState{Phase: PhaseFailed, Reason: err.Error()}
			log.Error().Err(err).Str("component", "catalog").Str("resource", "products").Msg("catalog load failed")
			return nil
		}
		s.catalog = append([]domain.Product(nil), products...)
		s.status.Products = LoadState{Phase: PhaseReady, Count: len(products), LoadedAt: time.Now().UTC()}
		log.Info().Str("component", "catalog").Int("count", len(products)).Msg("products loaded")
		return nil
	})

	eg.Go(func() error {
		categories, err := s.categories.FetchCategories(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			res.CategoriesErr = err
			s.status.Categories = LoadState{Phase: PhaseFailed, Reason: err.Error()}
			log.Error().Err(err).Str("component", "catalog").Str("resource", "categories").Msg("catalog load failed")
			return nil
		}
		s.categorySet = categories
		s.status.Categories = LoadState{Phase: PhaseReady, Count: len(categories), LoadedAt: time.Now().UTC()}
		log.Info().Str("component", "catalog").Int("count", len(categories)).Msg("categories loaded")
		return nil
	})

	_ = eg.Wait()
	return res
}

// Status returns the load state of both lists.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
