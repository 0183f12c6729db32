package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loftloot/loftloot/internal/feed"
	"github.com/loftloot/loftloot/internal/server"
	"github.com/loftloot/loftloot/internal/testutil"
	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
	"github.com/loftloot/loftloot/pkg/models"
)

func setupHandler(t *testing.T, source feed.Source, load bool) (*Engine, *http.ServeMux) {
	t.Helper()
	engine := NewEngine(source, testutil.Logger())
	if load {
		if _, err := engine.Reload(context.Background()); err != nil {
			t.Fatalf("Reload: %v", err)
		}
	}
	mux := http.NewServeMux()
	NewHandler(engine, testutil.Logger()).RegisterRoutes(mux)
	return engine, mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) server.Problem {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var p server.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestHandler_NotReady(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, false)

	for _, path := range []string{
		"/api/v1/catalog/products",
		"/api/v1/catalog/products/1",
		"/api/v1/catalog/products/1/related",
		"/api/v1/catalog/search",
		"/api/v1/catalog/suggest?q=optimus",
		"/api/v1/catalog/filters",
		"/api/v1/catalog/facets",
	} {
		rec := doRequest(t, mux, http.MethodGet, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", path, rec.Code)
			continue
		}
		if p := decodeProblem(t, rec); p.Type != server.ProblemTypeNotReady {
			t.Errorf("GET %s problem type = %q", path, p.Type)
		}
	}

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", rec.Code)
	}
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Ready {
		t.Error("Ready = true before first load")
	}
}

func TestHandler_ListAndGetProduct(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list ProductListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 10 || len(list.Products) != 10 || list.Version == "" {
		t.Errorf("list = count %d, %d products, version %q", list.Count, len(list.Products), list.Version)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var p models.Product
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != 1 || p.Name != "Optimus Prime" {
		t.Errorf("product = %d %q", p.ID, p.Name)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/999")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandler_Related(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/1/related?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp RelatedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 1 || resp.Count != len(resp.Products) || resp.Count > 2 {
		t.Errorf("related = %+v", resp)
	}
	for _, p := range resp.Products {
		if p.IsSold {
			t.Errorf("sold-out product %d recommended", p.ID)
		}
	}

	if rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/999/related"); rec.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", rec.Code)
	}
}

func TestHandler_Search(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)

	tests := []struct {
		name   string
		target string
		status int
		total  int
		first  int64
	}{
		{"all latest", "/api/v1/catalog/search", http.StatusOK, 10, 10},
		{"collection filter", "/api/v1/catalog/search?collection=Transformers&sort=price-low", http.StatusOK, 2, 1},
		{"query", "/api/v1/catalog/search?q=skeletor", http.StatusOK, 1, 4},
		{"in stock and price", "/api/v1/catalog/search?in_stock=true&min_price=100&sort=price-high", http.StatusOK, 2, 8},
		{"bad limit", "/api/v1/catalog/search?limit=x", http.StatusBadRequest, 0, 0},
		{"bad bool", "/api/v1/catalog/search?in_stock=maybe", http.StatusBadRequest, 0, 0},
		{"inverted price", "/api/v1/catalog/search?min_price=50&max_price=10", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp SearchResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Total != tt.total {
				t.Errorf("Total = %d, want %d", resp.Total, tt.total)
			}
			if len(resp.Products) == 0 || resp.Products[0].ID != tt.first {
				t.Errorf("first product = %v, want %d", productIDs(resp.Products), tt.first)
			}
		})
	}
}

func TestHandler_SearchLimit(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/search?limit=3")
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || resp.Total != 10 {
		t.Errorf("Count = %d, Total = %d, want 3 and 10", resp.Count, resp.Total)
	}
	if resp.Sort != SortLatest {
		t.Errorf("Sort = %q, want latest", resp.Sort)
	}
}

func TestHandler_Suggest(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/suggest?q=bear")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res SuggestionResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalProducts == 0 {
		t.Error("expected product suggestions for bear")
	}
	if len(res.Filters) == 0 || res.Filters[0].Kind != FilterCollection || res.Filters[0].Value != "Care Bears" {
		t.Errorf("Filters = %+v, want Care Bears collection first", res.Filters)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/catalog/suggest?q=b")
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalProducts != 0 || len(res.Filters) != 0 {
		t.Errorf("single character query = %+v, want empty", res)
	}
}

func TestHandler_FiltersAndFacets(t *testing.T) {
	_, mux := setupHandler(t, feed.EmbeddedSource{}, true)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/filters?collection=Nope")
	if rec.Code != http.StatusOK {
		t.Fatalf("filters status = %d", rec.Code)
	}
	var a Availability
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !a.Degenerate || a.PriceBounds != FallbackPriceBounds {
		t.Errorf("availability = %+v, want degenerate fallback", a)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/catalog/facets")
	if rec.Code != http.StatusOK {
		t.Fatalf("facets status = %d", rec.Code)
	}
	var f Facets
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Collections) == 0 || f.Collections[len(f.Collections)-1] != models.CollectionOther {
		t.Errorf("Collections = %v, want Other last", f.Collections)
	}
}

func TestHandler_Reload(t *testing.T) {
	src := newStubSource(testutil.NewRawProduct(1))
	_, mux := setupHandler(t, src, false)

	rec := doRequest(t, mux, http.MethodPost, "/api/v1/catalog/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rec.Code)
	}
	var report BuildReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Products != 1 || report.Version == "" {
		t.Errorf("report = %+v", report)
	}

	src.set(nil, pkgcatalog.NewFeedError(pkgcatalog.CodeFeedMalformed, "bad json", nil))
	rec = doRequest(t, mux, http.MethodPost, "/api/v1/catalog/reload")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed reload status = %d, want 502", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Type != server.ProblemTypeFeedMalformed {
		t.Errorf("problem type = %q, want feed malformed", p.Type)
	}

	// The previous catalog keeps serving.
	if rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/products/1"); rec.Code != http.StatusOK {
		t.Errorf("product after failed reload = %d, want 200", rec.Code)
	}
}

func TestHandler_ReloadGuardedByAdmin(t *testing.T) {
	engine := NewEngine(feed.EmbeddedSource{}, testutil.Logger())
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			server.Forbidden(w, "admin role required", r.URL.Path)
		})
	}
	mux := http.NewServeMux()
	NewHandler(engine, testutil.Logger()).WithAdmin(deny).RegisterRoutes(mux)

	rec := doRequest(t, mux, http.MethodPost, "/api/v1/catalog/reload")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("guarded reload status = %d, want 403", rec.Code)
	}
	if _, ok := engine.Catalog(); ok {
		t.Error("guarded reload must not load the catalog")
	}
	// Read routes stay open.
	if rec := doRequest(t, mux, http.MethodGet, "/api/v1/catalog/status"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
