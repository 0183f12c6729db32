package catalog

import (
	"fmt"
	"slices"
	"testing"

	"github.com/loftloot/loftloot/internal/testutil"
	"github.com/loftloot/loftloot/pkg/models"
)

// abcCatalog is the three-product catalog used by several scenarios:
// A (X, Figure, in stock, 20), B (X, Figure, sold out, 10), C (Y, Vehicle, in stock, 30).
func abcCatalog(t *testing.T) *Catalog {
	t.Helper()
	return buildCatalog(t,
		testutil.NewRawProduct(1, testutil.WithName("Alpha"), testutil.WithCollection("X"), testutil.WithType("Figure"), testutil.WithStock(5), testutil.WithPrice(20)),
		testutil.NewRawProduct(2, testutil.WithName("Bravo"), testutil.WithCollection("X"), testutil.WithType("Figure"), testutil.WithStock(0), testutil.WithPrice(10)),
		testutil.NewRawProduct(3, testutil.WithName("Charlie"), testutil.WithCollection("Y"), testutil.WithType("Vehicle"), testutil.WithStock(3), testutil.WithPrice(30)),
	)
}

func allFilters() FilterState {
	return FilterState{Collection: models.FilterAll, Decade: models.FilterAll, Type: models.FilterAll}
}

func TestSearch_ScenarioPriceLowStockFirst(t *testing.T) {
	c := abcCatalog(t)
	got := Sort(c.Search(allFilters()), SortPriceLow)
	if ids := productIDs(got); !slices.Equal(ids, []int64{1, 3, 2}) {
		t.Errorf("ids = %v, want [1 3 2] (A, C, B)", ids)
	}
}

func TestSearch_NaturalOrderAndPredicates(t *testing.T) {
	c := abcCatalog(t)

	tests := []struct {
		name string
		fs   FilterState
		want []int64
	}{
		{"everything", allFilters(), []int64{1, 2, 3}},
		{"zero value selects everything", FilterState{}, []int64{1, 2, 3}},
		{"collection", FilterState{Collection: "X", Decade: models.FilterAll, Type: models.FilterAll}, []int64{1, 2}},
		{"type", FilterState{Collection: models.FilterAll, Decade: models.FilterAll, Type: "Vehicle"}, []int64{3}},
		{"in stock", FilterState{Collection: "X", InStockOnly: true}, []int64{1}},
		{"price inclusive", FilterState{Price: &PriceRange{Min: 10, Max: 20}}, []int64{1, 2}},
		{"query", FilterState{Query: "charl"}, []int64{3}},
		{"query and collection", FilterState{Query: "x", Collection: "Y"}, []int64{}},
		{"unknown collection", FilterState{Collection: "Nope"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := productIDs(c.Search(tt.fs)); !slices.Equal(got, tt.want) {
				t.Errorf("Search() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_SubsetLaw(t *testing.T) {
	c := sampleCatalog(t)
	f := c.Facets()

	collections := append([]string{models.FilterAll}, f.Collections...)
	decades := append([]string{models.FilterAll}, f.Decades...)
	types := append([]string{models.FilterAll}, f.Types...)
	ranges := []*PriceRange{nil, {Min: 0, Max: 50}, {Min: 40, Max: 150}}
	queries := []string{"", "bear", "19", "kenner", "zzz"}

	inCatalog := map[int64]bool{}
	for _, p := range c.Products() {
		inCatalog[p.ID] = true
	}

	checked := 0
	for _, col := range collections {
		for _, dec := range decades {
			for _, typ := range types {
				for _, pr := range ranges {
					for _, q := range queries {
						for _, stock := range []bool{false, true} {
							fs := FilterState{Collection: col, Decade: dec, Type: typ, Price: pr, InStockOnly: stock, Query: q}
							for _, p := range c.Search(fs) {
								checked++
								if !inCatalog[p.ID] {
									t.Fatalf("%+v: product %d not in catalog", fs, p.ID)
								}
								if col != models.FilterAll && p.Collection != col {
									t.Fatalf("%+v: product %d collection %q", fs, p.ID, p.Collection)
								}
								if dec != models.FilterAll && p.Decade != dec {
									t.Fatalf("%+v: product %d decade %q", fs, p.ID, p.Decade)
								}
								if typ != models.FilterAll && p.Type != typ {
									t.Fatalf("%+v: product %d type %q", fs, p.ID, p.Type)
								}
								if pr != nil && (p.Price < pr.Min || p.Price > pr.Max) {
									t.Fatalf("%+v: product %d price %v", fs, p.ID, p.Price)
								}
								if stock && p.IsSold {
									t.Fatalf("%+v: product %d is sold out", fs, p.ID)
								}
								if !c.index.Matches(p.ID, NormalizeText(q)) {
									t.Fatalf("%+v: product %d does not match query", fs, p.ID)
								}
							}
						}
					}
				}
			}
		}
	}
	if checked == 0 {
		t.Fatal("subset law exercised no results")
	}
}

func TestSuggest_ShortQueriesYieldNothing(t *testing.T) {
	c := sampleCatalog(t)
	for _, q := range []string{"", "a", "  b  ", "é"} {
		res := c.Suggest(q, false, SuggestOptions{})
		if len(res.Filters) != 0 || len(res.Products) != 0 || res.TotalProducts != 0 {
			t.Errorf("Suggest(%q) = %+v, want empty", q, res)
		}
		if res.Filters == nil || res.Products == nil {
			t.Errorf("Suggest(%q) should return empty slices, not nil", q)
		}
	}
}

func TestSuggest_TruncatesButCountsAll(t *testing.T) {
	var records []models.RawProduct
	for i := range 8 {
		records = append(records, testutil.NewRawProduct(int64(i+1), testutil.WithName(fmt.Sprintf("Starscream %d", i))))
	}
	records[2].Stock = 0
	c := buildCatalog(t, records...)

	res := c.Suggest("starscream", false, SuggestOptions{ProductLimit: 3})
	if len(res.Products) != 3 {
		t.Errorf("Products len = %d, want 3", len(res.Products))
	}
	if res.TotalProducts != 8 {
		t.Errorf("TotalProducts = %d, want 8", res.TotalProducts)
	}
	if ids := productIDs(res.Products); !slices.Equal(ids, []int64{1, 2, 3}) {
		t.Errorf("product ids = %v, want catalog order [1 2 3]", ids)
	}

	inStock := c.Suggest("starscream", true, SuggestOptions{ProductLimit: 3})
	if inStock.TotalProducts != 7 {
		t.Errorf("in-stock TotalProducts = %d, want 7", inStock.TotalProducts)
	}
	if ids := productIDs(inStock.Products); !slices.Equal(ids, []int64{1, 2, 4}) {
		t.Errorf("in-stock product ids = %v, want [1 2 4]", ids)
	}
}

func TestSuggest_FilterSuggestions(t *testing.T) {
	c := buildCatalog(t,
		testutil.NewRawProduct(1, testutil.WithCollection("Plush Pals"), testutil.WithType("Plush"), testutil.WithYear(1984)),
		testutil.NewRawProduct(2, testutil.WithCollection("Zoids"), testutil.WithType("Vehicle"), testutil.WithYear(1993)),
		testutil.NewRawProduct(3, testutil.WithCollection("Zoids"), testutil.WithType("Vehicle"), testutil.WithoutYear()),
	)

	t.Run("collections before types", func(t *testing.T) {
		res := c.Suggest("plush", false, SuggestOptions{})
		want := []FilterSuggestion{
			{Kind: FilterCollection, Value: "Plush Pals", Label: "Plush Pals"},
			{Kind: FilterType, Value: "Plush", Label: "Plush Toys"},
		}
		if !slices.Equal(res.Filters, want) {
			t.Errorf("Filters = %+v, want %+v", res.Filters, want)
		}
	})

	t.Run("eras", func(t *testing.T) {
		res := c.Suggest("90s", false, SuggestOptions{})
		want := []FilterSuggestion{{Kind: FilterEra, Value: "1990s", Label: "1990s"}}
		if !slices.Equal(res.Filters, want) {
			t.Errorf("Filters = %+v, want %+v", res.Filters, want)
		}
	})

	t.Run("unknown decade is never suggested", func(t *testing.T) {
		res := c.Suggest("unknown", false, SuggestOptions{})
		if len(res.Filters) != 0 {
			t.Errorf("Filters = %+v, want none", res.Filters)
		}
	})

	t.Run("filter limit", func(t *testing.T) {
		res := c.Suggest("19", false, SuggestOptions{FilterLimit: 1})
		if len(res.Filters) != 1 || res.Filters[0].Value != "1980s" {
			t.Errorf("Filters = %+v, want only 1980s", res.Filters)
		}
	})
}

func TestFilterSuggestion_Apply(t *testing.T) {
	start := FilterState{
		Collection:  "Zoids",
		Decade:      "1980s",
		Type:        "Vehicle",
		Price:       &PriceRange{Min: 5, Max: 50},
		InStockOnly: true,
		Query:       "zo",
	}

	got := FilterSuggestion{Kind: FilterEra, Value: "1990s"}.Apply(start)
	if got.Query != "" {
		t.Errorf("Query = %q, want cleared", got.Query)
	}
	if got.Decade != "1990s" || got.Collection != "Zoids" || got.Type != "Vehicle" {
		t.Errorf("selection = %q/%q/%q, want Zoids/1990s/Vehicle", got.Collection, got.Decade, got.Type)
	}
	if !got.InStockOnly || got.Price == nil || got.Price.Max != 50 {
		t.Errorf("stock toggle and price range should survive: %+v", got)
	}
}

func TestFilterSuggestion_ApplyKeepsOtherDimensions(t *testing.T) {
	c := abcCatalog(t)
	fs := c.DefaultFilterState()
	fs.Collection = "Y"

	got := FilterSuggestion{Kind: FilterType, Value: "Vehicle"}.Apply(fs)
	if got.Collection != "Y" || got.Type != "Vehicle" {
		t.Fatalf("selection = %q/%q, want Y/Vehicle", got.Collection, got.Type)
	}
	if res := c.Search(got); len(res) != 1 || res[0].ID != 3 {
		t.Errorf("Search = %v, want [3]", productIDs(res))
	}
}

func TestCatalog_CommitQuery(t *testing.T) {
	c := abcCatalog(t)
	start := FilterState{
		Collection:  "Zoids",
		Decade:      "1980s",
		Type:        "Vehicle",
		Price:       &PriceRange{Min: 12, Max: 15},
		InStockOnly: true,
	}

	got := c.CommitQuery(start, "optimus")
	if got.Query != "optimus" {
		t.Errorf("Query = %q, want optimus", got.Query)
	}
	if got.Collection != models.FilterAll || got.Decade != models.FilterAll || got.Type != models.FilterAll {
		t.Errorf("non-empty query should reset selections, got %+v", got)
	}
	if got.Price == nil || got.Price.Min != 10 || got.Price.Max != 30 {
		t.Errorf("Price = %+v, want catalog span [10, 30]", got.Price)
	}
	if !got.InStockOnly {
		t.Error("stock toggle should survive a query commit")
	}

	kept := c.CommitQuery(start, "   ")
	if kept.Collection != "Zoids" || kept.Type != "Vehicle" {
		t.Errorf("blank query should keep selections, got %+v", kept)
	}
	if kept.Price == nil || kept.Price.Min != 12 || kept.Price.Max != 15 {
		t.Errorf("blank query should keep the price range, got %+v", kept.Price)
	}
}

func TestCatalog_CommitQueryWidensNarrowPrice(t *testing.T) {
	c := abcCatalog(t)
	fs := c.DefaultFilterState()
	fs.Price = &PriceRange{Min: 10, Max: 20}

	got := c.Search(c.CommitQuery(fs, "charlie"))
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("Search = %v, want [3]", productIDs(got))
	}
}

func TestDefaultFilterState(t *testing.T) {
	c := abcCatalog(t)
	fs := c.DefaultFilterState()
	if fs.Price == nil || fs.Price.Min != 10 || fs.Price.Max != 30 {
		t.Errorf("Price = %+v, want [10, 30]", fs.Price)
	}
	if got := c.Search(fs); len(got) != 3 {
		t.Errorf("default state should match everything, got %d", len(got))
	}
}

func TestResultSet_Take(t *testing.T) {
	rs := abcCatalog(t).Search(allFilters())
	if got := rs.Take(2); len(got) != 2 {
		t.Errorf("Take(2) len = %d", len(got))
	}
	if got := rs.Take(0); len(got) != 3 {
		t.Errorf("Take(0) len = %d, want all", len(got))
	}
	if got := rs.Take(10); len(got) != 3 {
		t.Errorf("Take(10) len = %d, want all", len(got))
	}
}
