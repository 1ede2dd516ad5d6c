package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"storefront-catalog/internal/domain"
)

// Predefined errors for upstream reads
var (
	ErrUnexpectedStatus = errors.New("source: unexpected upstream status")
	ErrUpstreamOpen     = errors.New("source: upstream circuit open")
)

const (
	productsPath   = "/products"
	categoriesPath = "/products/categories"
	maxBodyBytes   = 16 << 20
)

// BreakerSettings tunes the circuit breaker that guards upstream calls.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// HTTPSource reads the catalog from a REST API shaped like fakestoreapi.com.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPSource creates a source rooted at baseURL. A nil client gets one with the given timeout.
func NewHTTPSource(baseURL string, client *http.Client, timeout time.Duration, bs BreakerSettings) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cb:      newBreaker("catalog-upstream", bs),
	}
}

func newBreaker(name string, bs BreakerSettings) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = bs.OpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= bs.MinRequests && failureRatio >= bs.FailureRatio
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("upstream circuit breaker changed state")
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// FetchProducts GETs the product list. The payload is not validated.
func (s *HTTPSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := s.get(ctx, productsPath)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("source: FetchProducts failed to decode body: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// FetchCategories GETs the category labels.
func (s *HTTPSource) FetchCategories(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, categoriesPath)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("source: FetchCategories failed to decode body: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	body, err := s.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("source: failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		res, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("source: GET %s failed: %w", path, err)
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, res.StatusCode)
		}
		b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("source: failed to read %s body: %w", path, err)
		}
		return b, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamOpen, err)
	}
	return body, err
}
