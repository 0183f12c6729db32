package catalog

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	pkgcatalog "github.com/loftloot/loftloot/pkg/catalog"
	"github.com/loftloot/loftloot/pkg/models"
)

// BuildReport summarizes one catalog build.
type BuildReport struct {
	Version  string                 `json:"version"`
	Products int                    `json:"products"`
	Rejected []pkgcatalog.Rejection `json:"rejected"`
	Duration time.Duration          `json:"duration"`
}

// Build normalizes every record of a decoded feed, drops duplicate ids,
// computes the aggregates and related lists and indexes the result. Only a
// nil feed is an error; invalid records are reported and skipped, and an
// empty feed yields an empty catalog.
func Build(feed *pkgcatalog.Feed) (*Catalog, BuildReport, error) {
	start := time.Now()
	if feed == nil {
		return nil, BuildReport{}, pkgcatalog.NewFeedError(pkgcatalog.CodeFeedMalformed, "no feed to build", nil)
	}

	report := BuildReport{Rejected: append([]pkgcatalog.Rejection(nil), feed.Rejected...)}

	products := make([]*models.Product, 0, len(feed.Records))
	byID := make(map[int64]*models.Product, len(feed.Records))
	for i, raw := range feed.Records {
		if _, dup := byID[raw.ID]; dup {
			err := pkgcatalog.NewFeedError(pkgcatalog.CodeRecordInvalid, fmt.Sprintf("record %d: duplicate id", raw.ID), nil)
			report.Rejected = append(report.Rejected, pkgcatalog.Rejection{Index: i, ID: raw.ID, Reason: err.Error(), Err: err})
			continue
		}
		p := Normalize(raw)
		products = append(products, p)
		byID[p.ID] = p
	}

	for _, p := range products {
		p.RelatedIDs = relatedIDs(p, products)
	}

	c := &Catalog{
		version:  uuid.NewString(),
		builtAt:  start.UTC(),
		products: products,
		byID:     byID,
		index:    NewTextIndex(products),
	}
	c.collections, c.decades, c.types = distinctFilterValues(products)
	c.minPrice, c.maxPrice = priceBounds(products)

	report.Version = c.version
	report.Products = len(products)
	report.Duration = time.Since(start)
	return c, report, nil
}

// distinctFilterValues collects the filter options: collections collated with
// "Other" last, decades ascending, types in first-seen order.
func distinctFilterValues(products []*models.Product) (collections, decades, types []string) {
	collections, decades, types = []string{}, []string{}, []string{}
	seenC := map[string]struct{}{}
	seenD := map[string]struct{}{}
	seenT := map[string]struct{}{}
	for _, p := range products {
		if _, ok := seenC[p.Collection]; !ok {
			seenC[p.Collection] = struct{}{}
			collections = append(collections, p.Collection)
		}
		if _, ok := seenD[p.Decade]; !ok && p.Decade != "" {
			seenD[p.Decade] = struct{}{}
			decades = append(decades, p.Decade)
		}
		if _, ok := seenT[p.Type]; !ok && p.Type != "" {
			seenT[p.Type] = struct{}{}
			types = append(types, p.Type)
		}
	}

	col := newCollator()
	slices.SortStableFunc(collections, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == models.CollectionOther:
			return 1
		case b == models.CollectionOther:
			return -1
		}
		return col.CompareString(a, b)
	})
	slices.Sort(decades)

	if collections == nil {
		collections = []string{}
	}
	if decades == nil {
		decades = []string{}
	}
	if types == nil {
		types = []string{}
	}
	return collections, decades, types
}

func priceBounds(products []*models.Product) (lo, hi float64) {
	for i, p := range products {
		if i == 0 || p.Price < lo {
			lo = p.Price
		}
		if i == 0 || p.Price > hi {
			hi = p.Price
		}
	}
	return lo, hi
}
