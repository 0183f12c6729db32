package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/loftloot/loftloot/pkg/models"
)

// Strategy names a sort order.
type Strategy string

const (
	SortPriceLow  Strategy = "price-low"
	SortPriceHigh Strategy = "price-high"
	SortNameAsc   Strategy = "name-asc"
	SortNameDesc  Strategy = "name-desc"
	SortLatest    Strategy = "latest"

	// DefaultStrategy is used for empty and unknown names.
	DefaultStrategy = SortLatest
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{SortLatest, SortPriceLow, SortPriceHigh, SortNameAsc, SortNameDesc}

// Comparator orders two products like cmp.Compare.
type Comparator func(a, b *models.Product) int

// ParseStrategy maps a name to a strategy, degrading to DefaultStrategy.
func ParseStrategy(name string) Strategy {
	s := Strategy(name)
	if slices.Contains(Strategies, s) {
		return s
	}
	return DefaultStrategy
}

// newCollator returns a collator for display names. Collators keep scratch
// buffers, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// ComparatorFor returns the plain comparator of a strategy without the
// in-stock override.
func ComparatorFor(s Strategy) Comparator {
	switch ParseStrategy(string(s)) {
	case SortPriceLow:
		return func(a, b *models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceHigh:
		return func(a, b *models.Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortNameAsc:
		col := newCollator()
		return func(a, b *models.Product) int { return col.CompareString(a.Name, b.Name) }
	case SortNameDesc:
		col := newCollator()
		return func(a, b *models.Product) int { return col.CompareString(b.Name, a.Name) }
	default:
		return func(a, b *models.Product) int { return cmp.Compare(b.ID, a.ID) }
	}
}

// InStockFirst wraps next so an in-stock product always precedes a sold-out
// one; next only decides between products of equal stock status.
func InStockFirst(next Comparator) Comparator {
	return func(a, b *models.Product) int {
		switch {
		case a.InStock() && !b.InStock():
			return -1
		case !a.InStock() && b.InStock():
			return 1
		}
		return next(a, b)
	}
}

// Sort returns a new, stably ordered copy of rs. The input is not modified.
func Sort(rs ResultSet, s Strategy) ResultSet {
	out := slices.Clone(rs)
	if out == nil {
		out = ResultSet{}
	}
	slices.SortStableFunc(out, InStockFirst(ComparatorFor(s)))
	return out
}
