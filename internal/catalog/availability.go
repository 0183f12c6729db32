package catalog

import "slices"

// FallbackPriceBounds is reported when no product matches the selection.
var FallbackPriceBounds = PriceRange{Min: 0, Max: 100}

// Availability lists the filter values that still lead somewhere.
type Availability struct {
	Collections []string   `json:"collections"`
	Decades     []string   `json:"decades"`
	Types       []string   `json:"types"`
	PriceBounds PriceRange `json:"price_bounds"`
	// Degenerate is set when the current selection matches nothing and
	// PriceBounds holds the fallback range.
	Degenerate bool `json:"degenerate"`
}

// AvailableFilterValues computes, for each of collection, decade and type,
// the values that match at least one product while the other two selections
// and the stock toggle stay fixed. Price bounds cover products matching all
// three selections; price itself and the query are ignored.
func (c *Catalog) AvailableFilterValues(fs FilterState) Availability {
	collections := map[string]struct{}{}
	decades := map[string]struct{}{}
	types := map[string]struct{}{}

	var (
		lo, hi  float64
		matched bool
	)
	for _, p := range c.products {
		if fs.InStockOnly && p.IsSold {
			continue
		}
		okC := isAll(fs.Collection) || p.Collection == fs.Collection
		okD := isAll(fs.Decade) || p.Decade == fs.Decade
		okT := isAll(fs.Type) || p.Type == fs.Type

		if okD && okT {
			collections[p.Collection] = struct{}{}
		}
		if okC && okT {
			decades[p.Decade] = struct{}{}
		}
		if okC && okD && p.Type != "" {
			types[p.Type] = struct{}{}
		}
		if okC && okD && okT {
			if !matched || p.Price < lo {
				lo = p.Price
			}
			if !matched || p.Price > hi {
				hi = p.Price
			}
			matched = true
		}
	}

	a := Availability{
		Collections: sortedKeys(collections),
		Decades:     sortedKeys(decades),
		Types:       sortedKeys(types),
		PriceBounds: PriceRange{Min: lo, Max: hi},
	}
	if !matched {
		a.PriceBounds = FallbackPriceBounds
		a.Degenerate = true
	}
	return a
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SelectionAvailable reports whether every non-"All" selection in fs is among
// the available values. Callers use it to reset stale selections.
func (a Availability) SelectionAvailable(fs FilterState) bool {
	return (isAll(fs.Collection) || slices.Contains(a.Collections, fs.Collection)) &&
		(isAll(fs.Decade) || slices.Contains(a.Decades, fs.Decade)) &&
		(isAll(fs.Type) || slices.Contains(a.Types, fs.Type))
}
