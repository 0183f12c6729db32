package catalog

import (
	"strconv"
	"strings"

	"github.com/loftloot/loftloot/pkg/models"
)

// indexEntry holds the searchable keys of one product.
type indexEntry struct {
	fields     []string
	yearTokens []string
}

// TextIndex answers containment queries over normalized product fields and
// generated year tokens. It is a per-product scan, not a posting list.
type TextIndex struct {
	entries map[int64]indexEntry
}

// NewTextIndex indexes products. The index is read-only once built.
func NewTextIndex(products []*models.Product) *TextIndex {
	idx := &TextIndex{entries: make(map[int64]indexEntry, len(products))}
	for _, p := range products {
		fields := make([]string, 0, 6)
		for _, f := range []string{
			p.NormalizedName,
			p.NormalizedBrand,
			p.NormalizedManufacturer,
			p.NormalizedCollection,
			p.NormalizedType,
			p.NormalizedDescription,
		} {
			if f != "" {
				fields = append(fields, f)
			}
		}
		idx.entries[p.ID] = indexEntry{fields: fields, yearTokens: YearTokens(p.ReleaseDate)}
	}
	return idx
}

// Matches reports whether the product with the given id matches an already
// normalized query: the query is a substring of one of its fields or a
// prefix of one of its year tokens. An empty query matches everything.
func (idx *TextIndex) Matches(id int64, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}
	e, ok := idx.entries[id]
	if !ok {
		return false
	}
	for _, f := range e.fields {
		if strings.Contains(f, normalizedQuery) {
			return true
		}
	}
	for _, tok := range e.yearTokens {
		if strings.HasPrefix(tok, normalizedQuery) {
			return true
		}
	}
	return false
}

// YearTokens generates the era tokens for a release year: the five years
// centred on it, the decade as "1990s", "1990", "90s" and "90", and the first
// three digits of the year. It returns nil without a release year.
func YearTokens(releaseDate *int) []string {
	if releaseDate == nil || *releaseDate == 0 {
		return nil
	}
	year := *releaseDate

	seen := make(map[string]struct{}, 10)
	tokens := make([]string, 0, 10)
	add := func(tok string) {
		if _, dup := seen[tok]; dup || tok == "" {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for i := -2; i <= 2; i++ {
		add(strconv.Itoa(year + i))
	}

	decade := strconv.Itoa(floorDecade(year))
	add(decade + "s")
	add(decade)
	if len(decade) > 2 {
		add(decade[2:] + "s")
		add(decade[2:])
	}

	y := strconv.Itoa(year)
	if len(y) > 3 {
		y = y[:3]
	}
	add(y)
	return tokens
}
