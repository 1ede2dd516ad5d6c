package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/filter"
	"storefront-catalog/internal/form"
	"storefront-catalog/internal/notify"
)

// Catalog is the store surface the handlers depend on.
type Catalog interface {
	Products() []domain.Product
	AllProducts() []domain.Product
	Categories() []string
	SearchQuery() string
	SetSearchQuery(q string)
	AddProduct(in domain.ProductInput) (domain.Product, error)
	UpdateProduct(p domain.Product) error
	DeleteProduct(id int64) error
	Status() catalog.Status
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog  Catalog
	view     *filter.View
	feed     *notify.Feed
	validate *form.Validator
}

// NewHTTPHandler creates a new HTTPHandler. The view must read from the same catalog.
func NewHTTPHandler(c Catalog, view *filter.View, feed *notify.Feed, v *form.Validator) *HTTPHandler {
	return &HTTPHandler{
		catalog:  c,
		view:     view,
		feed:     feed,
		validate: v,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error  string           `json:"error"`
	Fields []form.FieldError `json:"fields,omitempty"`
}

// ProductList wraps product lists in responses.
type ProductList struct {
	Data  []domain.Product `json:"data"`
	Total int              `json:"total"`
}

// ViewResponse is the final rendered list along with the selections that produced it.
type ViewResponse struct {
	Criteria    filter.Criteria  `json:"criteria"`
	SearchQuery string           `json:"search_query"`
	Data        []domain.Product `json:"data"`
	Total       int              `json:"total"`
}

// SearchInput sets the active search text.
type SearchInput struct {
	Query string `json:"query"`
}

// ViewInput changes any subset of the filter selections.
type ViewInput struct {
	Category   *string `json:"category"`
	PriceRange *string `json:"price_range"`
	SortOrder  *string `json:"sort_order"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// respondWithValidation writes 400 with the rejected fields.
func respondWithValidation(w http.ResponseWriter, err error) bool {
	var ve form.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: ve})
	return true
}

// respondWithCatalogError maps store errors: not found is 404, a closed store is 503.
func respondWithCatalogError(w http.ResponseWriter, r *http.Request, err error, productID int64, action string) {
	log.Ctx(r.Context()).Warn().Err(err).Int64("product_id", productID).Msg(action + " failed")
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondWithError(w, http.StatusNotFound, catalog.ErrProductNotFound.Error())
	case errors.Is(err, catalog.ErrClosed):
		respondWithError(w, http.StatusServiceUnavailable, "Catalog is shutting down")
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func (h *HTTPHandler) requireAvailable(w http.ResponseWriter) bool {
	st := h.catalog.Status()
	if st.Available() {
		return true
	}
	msg := "Catalog unavailable: products have not loaded"
	if st.Products.Phase == catalog.PhaseFailed {
		msg = "Catalog unavailable: " + st.Products.Reason
	}
	respondWithError(w, http.StatusServiceUnavailable, msg)
	return false
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- Catalog Handlers ---

func (h *HTTPHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.catalog.Status()
	respondWithJSON(w, http.StatusOK, struct {
		Available bool `json:"available"`
		catalog.Status
	}{Available: st.Available(), Status: st})
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, struct {
		Data []string `json:"data"`
	}{Data: h.catalog.Categories()})
}

// ListProducts returns the search-filtered list. Optional category, price_range and sort_order
// query parameters run the filter pipeline once without touching the stored selections.
func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAvailable(w) {
		return
	}
	products := h.catalog.Products()

	q := r.URL.Query()
	if q.Has("category") || q.Has("price_range") || q.Has("sort_order") {
		c := filter.DefaultCriteria()
		if category := q.Get("category"); category != "" {
			c.Category = category
		}
		pr, err := domain.ParsePriceRange(q.Get("price_range"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		so, err := domain.ParseSortOrder(q.Get("sort_order"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.PriceRange, c.SortOrder = pr, so
		products = filter.Apply(products, c)
	}

	respondWithJSON(w, http.StatusOK, ProductList{Data: products, Total: len(products)})
}

// ListCatalog returns every product in insertion order, ignoring the search query.
func (h *HTTPHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireAvailable(w) {
		return
	}
	products := h.catalog.AllProducts()
	respondWithJSON(w, http.StatusOK, ProductList{Data: products, Total: len(products)})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.ValidateInput(input); err != nil {
		if !respondWithValidation(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Failed to validate product")
		}
		return
	}

	created, err := h.catalog.AddProduct(input)
	if err != nil {
		respondWithCatalogError(w, r, err, 0, "create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var input domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	product := input.WithID(productID)
	if err := h.validate.ValidateProduct(product); err != nil {
		if !respondWithValidation(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Failed to validate product")
		}
		return
	}

	if err := h.catalog.UpdateProduct(product); err != nil {
		respondWithCatalogError(w, r, err, productID, "update product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.catalog.DeleteProduct(productID); err != nil {
		respondWithCatalogError(w, r, err, productID, "delete product")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Search & View Handlers ---

func (h *HTTPHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, SearchInput{Query: h.catalog.SearchQuery()})
}

func (h *HTTPHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var input SearchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	h.catalog.SetSearchQuery(input.Query)
	respondWithJSON(w, http.StatusOK, input)
}

func (h *HTTPHandler) GetView(w http.ResponseWriter, r *http.Request) {
	if !h.requireAvailable(w) {
		return
	}
	products := h.view.Products()
	respondWithJSON(w, http.StatusOK, ViewResponse{
		Criteria:    h.view.Criteria(),
		SearchQuery: h.catalog.SearchQuery(),
		Data:        products,
		Total:       len(products),
	})
}

// SetView applies the given selections. Values are checked before any of them is applied.
func (h *HTTPHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var input ViewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	var (
		pr  domain.PriceRange
		so  domain.SortOrder
		err error
	)
	if input.PriceRange != nil {
		if pr, err = domain.ParsePriceRange(*input.PriceRange); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if input.SortOrder != nil {
		if so, err = domain.ParseSortOrder(*input.SortOrder); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if input.Category != nil {
		h.view.SetCategory(*input.Category)
	}
	if input.PriceRange != nil {
		h.view.SetPriceRange(pr)
	}
	if input.SortOrder != nil {
		h.view.SetSortOrder(so)
	}
	h.GetView(w, r)
}

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, struct {
		Data []domain.Notification `json:"data"`
	}{Data: h.feed.Recent()})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/status", h.GetStatus)
		r.Get("/catalog/products", h.ListCatalog)
		r.Get("/categories", h.ListCategories)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Route("/{productId}", func(r chi.Router) {
				r.Put("/", h.UpdateProduct)
				r.Delete("/", h.DeleteProduct)
			})
		})

		r.Get("/search", h.GetSearch)
		r.Put("/search", h.SetSearch)
		r.Get("/view", h.GetView)
		r.Put("/view", h.SetView)
		r.Get("/notifications", h.ListNotifications)
	})
}
