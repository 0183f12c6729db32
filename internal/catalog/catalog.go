// Package catalog implements the catalog relevance engine: normalization of
// feed records, related-item scoring, the text index, search and suggestions,
// filter availability and sort strategies, plus the Engine service and HTTP
// API that publish it.
package catalog

import (
	"slices"
	"time"

	"github.com/loftloot/loftloot/pkg/models"
)

// Catalog is an immutable snapshot of enriched products, aggregates and the
// text index. Every method is safe for concurrent use.
type Catalog struct {
	version     string
	builtAt     time.Time
	products    []*models.Product
	byID        map[int64]*models.Product
	collections []string
	decades     []string
	types       []string
	minPrice    float64
	maxPrice    float64
	index       *TextIndex
}

// Facets are the catalog-wide filter options and price bounds.
type Facets struct {
	Collections []string `json:"collections"`
	Decades     []string `json:"decades"`
	Types       []string `json:"types"`
	MinPrice    float64  `json:"min_price"`
	MaxPrice    float64  `json:"max_price"`
}

// Version identifies this snapshot. A reload always produces a new version.
func (c *Catalog) Version() string { return c.version }

// BuiltAt is when the snapshot was built.
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Products returns every product in feed order. The slice is a copy; the
// products are shared.
func (c *Catalog) Products() []*models.Product {
	out := make([]*models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks up a product by id. A miss returns (nil, false).
func (c *Catalog) Product(id int64) (*models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Facets returns the catalog-wide filter options.
func (c *Catalog) Facets() Facets {
	return Facets{
		Collections: slices.Clone(c.collections),
		Decades:     slices.Clone(c.decades),
		Types:       slices.Clone(c.types),
		MinPrice:    c.minPrice,
		MaxPrice:    c.maxPrice,
	}
}

// MinPrice is the lowest product price (0 for an empty catalog).
func (c *Catalog) MinPrice() float64 { return c.minPrice }

// MaxPrice is the highest product price (0 for an empty catalog).
func (c *Catalog) MaxPrice() float64 { return c.maxPrice }

// RelatedProducts resolves the precomputed related ids of a product, in rank
// order, truncated to limit (limit <= 0 means no truncation). Unknown
// products and ids that no longer resolve yield nothing.
func (c *Catalog) RelatedProducts(id int64, limit int) []*models.Product {
	p, ok := c.byID[id]
	if !ok {
		return []*models.Product{}
	}
	out := make([]*models.Product, 0, len(p.RelatedIDs))
	for _, rid := range p.RelatedIDs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if rp, ok := c.byID[rid]; ok {
			out = append(out, rp)
		}
	}
	return out
}
