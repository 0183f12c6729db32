package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/loftloot/loftloot/pkg/models"
)

// Suggestion defaults.
const (
	MinSuggestQueryLen         = 2
	DefaultSuggestProductLimit = 6
	DefaultSuggestFilterLimit  = 5
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// FilterState is the caller-owned selection combined with a catalog by
// Search. Collection, Decade and Type take models.FilterAll for no
// constraint; a nil Price is unbounded.
type FilterState struct {
	Collection  string      `json:"collection"`
	Decade      string      `json:"decade"`
	Type        string      `json:"type"`
	Price       *PriceRange `json:"price,omitempty"`
	InStockOnly bool        `json:"in_stock_only"`
	Query       string      `json:"query"`
}

// DefaultFilterState selects everything across the catalog price span.
func (c *Catalog) DefaultFilterState() FilterState {
	return FilterState{
		Collection: models.FilterAll,
		Decade:     models.FilterAll,
		Type:       models.FilterAll,
		Price:      &PriceRange{Min: c.minPrice, Max: c.maxPrice},
	}
}

// CommitQuery commits free text into fs. A non-empty query resets the
// structural filters and the price range to the catalog span so the search
// runs across the whole catalog; the stock toggle survives.
func (c *Catalog) CommitQuery(fs FilterState, query string) FilterState {
	fs.Query = query
	if strings.TrimSpace(query) != "" {
		fs.Collection = models.FilterAll
		fs.Decade = models.FilterAll
		fs.Type = models.FilterAll
		fs.Price = &PriceRange{Min: c.minPrice, Max: c.maxPrice}
	}
	return fs
}

func isAll(v string) bool { return v == "" || v == models.FilterAll }

// matchesStructure applies the collection, decade and type selections.
func (fs FilterState) matchesStructure(p *models.Product) bool {
	return (isAll(fs.Collection) || p.Collection == fs.Collection) &&
		(isAll(fs.Decade) || p.Decade == fs.Decade) &&
		(isAll(fs.Type) || p.Type == fs.Type)
}

// FilterKind tags a filter suggestion with the dimension it selects.
type FilterKind string

const (
	FilterCollection FilterKind = "collection"
	FilterType       FilterKind = "type"
	FilterEra        FilterKind = "era"
)

// FilterSuggestion proposes one filter value during live typing.
type FilterSuggestion struct {
	Kind  FilterKind `json:"kind"`
	Value string     `json:"value"`
	Label string     `json:"label"`
}

// Apply commits the suggestion: the query is cleared and the suggested
// dimension is set. Other selections are left as they are.
func (s FilterSuggestion) Apply(fs FilterState) FilterState {
	fs.Query = ""
	switch s.Kind {
	case FilterCollection:
		fs.Collection = s.Value
	case FilterType:
		fs.Type = s.Value
	case FilterEra:
		fs.Decade = s.Value
	}
	return fs
}

// SuggestionResult is the live preview for a partial query. TotalProducts
// counts every matching product even when Products is truncated.
type SuggestionResult struct {
	Filters       []FilterSuggestion `json:"filters"`
	Products      []*models.Product  `json:"products"`
	TotalProducts int                `json:"total_products"`
}

func emptySuggestions() SuggestionResult {
	return SuggestionResult{Filters: []FilterSuggestion{}, Products: []*models.Product{}}
}

// SuggestOptions caps the two suggestion lists. Zero or negative values fall
// back to the defaults.
type SuggestOptions struct {
	ProductLimit int
	FilterLimit  int
}

func (o SuggestOptions) withDefaults() SuggestOptions {
	if o.ProductLimit <= 0 {
		o.ProductLimit = DefaultSuggestProductLimit
	}
	if o.FilterLimit <= 0 {
		o.FilterLimit = DefaultSuggestFilterLimit
	}
	return o
}

// Suggest previews a query being typed. Queries shorter than two characters
// after trimming yield nothing. Product suggestions ignore the structural
// filters and honour only inStockOnly.
func (c *Catalog) Suggest(query string, inStockOnly bool, opts SuggestOptions) SuggestionResult {
	opts = opts.withDefaults()
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinSuggestQueryLen {
		return emptySuggestions()
	}
	q := NormalizeText(query)
	if q == "" {
		return emptySuggestions()
	}

	res := emptySuggestions()
	res.Filters = c.filterSuggestions(q, opts.FilterLimit)
	for _, p := range c.products {
		if inStockOnly && p.IsSold {
			continue
		}
		if !c.index.Matches(p.ID, q) {
			continue
		}
		res.TotalProducts++
		if len(res.Products) < opts.ProductLimit {
			res.Products = append(res.Products, p)
		}
	}
	return res
}

// filterSuggestions lists collections, then types, then eras whose label
// contains q.
func (c *Catalog) filterSuggestions(q string, limit int) []FilterSuggestion {
	out := make([]FilterSuggestion, 0, limit)
	add := func(kind FilterKind, value, label string) bool {
		if len(out) >= limit {
			return false
		}
		if strings.Contains(NormalizeText(label), q) || strings.Contains(NormalizeText(value), q) {
			out = append(out, FilterSuggestion{Kind: kind, Value: value, Label: label})
		}
		return true
	}
	for _, v := range c.collections {
		if !add(FilterCollection, v, v) {
			return out
		}
	}
	for _, v := range c.types {
		if !add(FilterType, v, models.PluralType(v)) {
			return out
		}
	}
	for _, v := range c.decades {
		if v == models.DecadeUnknown {
			continue
		}
		if !add(FilterEra, v, v) {
			return out
		}
	}
	return out
}

// ResultSet is an ordered selection of catalog products. Entries are shared
// with the catalog.
type ResultSet []*models.Product

// Search applies the text predicate, the collection/decade/type selections,
// the price range and the stock toggle, in that order, and returns matches in
// catalog order.
func (c *Catalog) Search(fs FilterState) ResultSet {
	q := NormalizeText(fs.Query)
	out := make(ResultSet, 0)
	for _, p := range c.products {
		if !c.index.Matches(p.ID, q) {
			continue
		}
		if !fs.matchesStructure(p) {
			continue
		}
		if fs.Price != nil && !fs.Price.Contains(p.Price) {
			continue
		}
		if fs.InStockOnly && p.IsSold {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Take returns the first n entries; n <= 0 returns the whole set.
func (rs ResultSet) Take(n int) ResultSet {
	if n <= 0 || n >= len(rs) {
		return rs
	}
	return rs[:n]
}
