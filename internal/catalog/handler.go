package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/loftloot/loftloot/internal/server"
	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
	"github.com/loftloot/loftloot/pkg/models"
)

// ProductListResponse is the response for GET /api/v1/catalog/products.
type ProductListResponse struct {
	Version  string            `json:"version"`
	Count    int               `json:"count"`
	Products []*models.Product `json:"products"`
}

// RelatedResponse is the response for GET /api/v1/catalog/products/{id}/related.
type RelatedResponse struct {
	ID       int64             `json:"id"`
	Count    int               `json:"count"`
	Products []*models.Product `json:"products"`
}

// SearchResponse is the response for GET /api/v1/catalog/search.
type SearchResponse struct {
	Filters  FilterState       `json:"filters"`
	Sort     Strategy          `json:"sort"`
	Total    int               `json:"total"`
	Count    int               `json:"count"`
	Products []*models.Product `json:"products"`
}

// Handler serves the catalog API.
type Handler struct {
	engine         *Engine
	logger         *zap.Logger
	originPatterns []string
	admin          func(http.Handler) http.Handler
}

// NewHandler creates a new catalog API handler. originPatterns lists the
// hosts allowed to open live-suggestion websockets from a browser.
func NewHandler(engine *Engine, logger *zap.Logger, originPatterns ...string) *Handler {
	return &Handler{engine: engine, logger: logger, originPatterns: originPatterns}
}

// WithAdmin guards the administration routes with mw. Without it they are
// open to any caller.
func (h *Handler) WithAdmin(mw func(http.Handler) http.Handler) *Handler {
	h.admin = mw
	return h
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/products", h.handleListProducts)
	mux.HandleFunc("GET /api/v1/catalog/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/v1/catalog/products/{id}/related", h.handleRelated)
	mux.HandleFunc("GET /api/v1/catalog/search", h.handleSearch)
	mux.HandleFunc("GET /api/v1/catalog/suggest", h.handleSuggest)
	mux.HandleFunc("GET /api/v1/catalog/suggest/live", h.handleLiveSuggest)
	mux.HandleFunc("GET /api/v1/catalog/filters", h.handleFilters)
	mux.HandleFunc("GET /api/v1/catalog/facets", h.handleFacets)
	mux.HandleFunc("GET /api/v1/catalog/status", h.handleStatus)
	mux.Handle("POST /api/v1/catalog/reload", h.adminOnly(http.HandlerFunc(h.handleReload)))
}

func (h *Handler) adminOnly(next http.Handler) http.Handler {
	if h.admin == nil {
		return next
	}
	return h.admin(next)
}

// handleListProducts returns every product in feed order.
//
//	@Summary		List products
//	@Description	Returns the whole published catalog in feed order.
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} ProductListResponse
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/products [get]
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	c, ok := h.engine.Catalog()
	if !ok {
		server.NotReady(w, ErrNotReady.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, ProductListResponse{
		Version:  c.Version(),
		Count:    c.Len(),
		Products: c.Products(),
	})
}

// handleGetProduct returns one product.
//
//	@Summary		Get product
//	@Tags			catalog
//	@Produce		json
//	@Param			id path int true "Product ID"
//	@Success		200 {object} models.Product
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/products/{id} [get]
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, found, err := h.engine.Product(id)
	if err != nil {
		h.readError(w, r, err)
		return
	}
	if !found {
		server.NotFound(w, fmt.Sprintf("product %d not found", id), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleRelated returns the precomputed related products.
//
//	@Summary		Related products
//	@Description	Returns related products in rank order. Sold-out products are never suggested.
//	@Tags			catalog
//	@Produce		json
//	@Param			id path int true "Product ID"
//	@Param			limit query int false "Maximum results" default(4)
//	@Success		200 {object} RelatedResponse
//	@Failure		404 {object} server.Problem
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/products/{id}/related [get]
func (h *Handler) handleRelated(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	products, found, err := h.engine.Related(id, limit)
	if err != nil {
		h.readError(w, r, err)
		return
	}
	if !found {
		server.NotFound(w, fmt.Sprintf("product %d not found", id), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, RelatedResponse{ID: id, Count: len(products), Products: products})
}

// handleSearch runs a committed search.
//
//	@Summary		Search products
//	@Description	Applies the text query, structural filters, price range and stock toggle, then sorts. In-stock products always come first.
//	@Tags			catalog
//	@Produce		json
//	@Param			q query string false "Free-text query"
//	@Param			collection query string false "Collection or All"
//	@Param			decade query string false "Decade (e.g. 1990s) or All"
//	@Param			type query string false "Type or All"
//	@Param			min_price query number false "Inclusive lower price bound"
//	@Param			max_price query number false "Inclusive upper price bound"
//	@Param			in_stock query bool false "Only in-stock products"
//	@Param			sort query string false "latest, price-low, price-high, name-asc, name-desc" default(latest)
//	@Param			limit query int false "Maximum results (0 = all)"
//	@Success		200 {object} SearchResponse
//	@Failure		400 {object} server.Problem
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/search [get]
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	fs, err := parseFilterState(r)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	strategy := ParseStrategy(r.URL.Query().Get("sort"))

	rs, total, err := h.engine.Search(fs, strategy, limit)
	if err != nil {
		h.readError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Filters:  fs,
		Sort:     strategy,
		Total:    total,
		Count:    len(rs),
		Products: rs,
	})
}

// handleSuggest previews a query being typed.
//
//	@Summary		Suggest
//	@Description	Filter and product suggestions for a partial query. Queries shorter than two characters return nothing.
//	@Tags			catalog
//	@Produce		json
//	@Param			q query string false "Partial query"
//	@Param			in_stock query bool false "Only in-stock products"
//	@Success		200 {object} SuggestionResult
//	@Failure		400 {object} server.Problem
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/suggest [get]
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	inStock, err := boolParam(r, "in_stock")
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	res, err := h.engine.Suggest(r.URL.Query().Get("q"), inStock)
	if err != nil {
		h.readError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleFilters reports which filter values remain selectable.
//
//	@Summary		Filter availability
//	@Tags			catalog
//	@Produce		json
//	@Param			collection query string false "Collection or All"
//	@Param			decade query string false "Decade or All"
//	@Param			type query string false "Type or All"
//	@Param			in_stock query bool false "Only in-stock products"
//	@Success		200 {object} Availability
//	@Failure		400 {object} server.Problem
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/filters [get]
func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	fs, err := parseFilterState(r)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	a, err := h.engine.Filters(fs)
	if err != nil {
		h.readError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleFacets returns the catalog-wide filter options.
//
//	@Summary		Facets
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} Facets
//	@Failure		503 {object} server.Problem
//	@Router			/catalog/facets [get]
func (h *Handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	f, err := h.engine.Facets()
	if err != nil {
		h.readError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleStatus reports the published catalog and last reload.
//
//	@Summary		Catalog status
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} Status
//	@Router			/catalog/status [get]
func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// handleReload fetches the feed and publishes a new catalog.
//
//	@Summary		Reload catalog
//	@Description	Fetches and rebuilds the catalog. On failure the previous catalog keeps serving.
//	@Tags			catalog
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {object} BuildReport
//	@Failure		401 {object} server.Problem
//	@Failure		403 {object} server.Problem
//	@Failure		502 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/reload [post]
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Reload(r.Context())
	if err != nil {
		if pkgcatalog.Blocking(err) {
			server.FeedFailure(w, pkgcatalog.IsCode(err, pkgcatalog.CodeFeedMalformed), err.Error(), r.URL.Path)
			return
		}
		h.logger.Error("catalog reload failed", zap.Error(err))
		server.InternalError(w, "catalog reload failed", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) readError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotReady) {
		server.NotReady(w, err.Error(), r.URL.Path)
		return
	}
	h.logger.Error("catalog read failed", zap.String("path", r.URL.Path), zap.Error(err))
	server.InternalError(w, "catalog read failed", r.URL.Path)
}

// -- request parsing --

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		server.BadRequest(w, "id must be an integer", r.URL.Path)
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return max(n, 0), nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b, nil
}

func floatParam(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false, fmt.Errorf("%s must be a number", name)
	}
	return f, true, nil
}

// parseFilterState reads a FilterState from query parameters. Missing
// dimensions mean "All"; a price range is only set when a bound is given.
func parseFilterState(r *http.Request) (FilterState, error) {
	q := r.URL.Query()
	fs := FilterState{
		Collection: valueOrAll(q.Get("collection")),
		Decade:     valueOrAll(q.Get("decade")),
		Type:       valueOrAll(q.Get("type")),
		Query:      q.Get("q"),
	}

	inStock, err := boolParam(r, "in_stock")
	if err != nil {
		return fs, err
	}
	fs.InStockOnly = inStock

	lo, hasLo, err := floatParam(r, "min_price")
	if err != nil {
		return fs, err
	}
	hi, hasHi, err := floatParam(r, "max_price")
	if err != nil {
		return fs, err
	}
	if hasLo || hasHi {
		if !hasHi {
			hi = math.MaxFloat64
		}
		if hasLo && hasHi && lo > hi {
			return fs, errors.New("min_price must not exceed max_price")
		}
		fs.Price = &PriceRange{Min: lo, Max: hi}
	}
	return fs, nil
}

func valueOrAll(v string) string {
	if v == "" {
		return models.FilterAll
	}
	return v
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
