package catalog

import (
	"slices"

	"github.com/loftloot/loftloot/pkg/models"
)

// Relatedness weights.
const (
	weightCollection  = 10
	weightType        = 8
	weightDecade      = 5
	weightManufacture = 3
	weightDemographic = 2
	weightNeutral     = 1
)

// Related-list size caps.
const (
	relatedDefaultCap    = 5
	relatedWideCap       = 10
	relatedMaxCap        = 20
	superRelevantScore   = 18
	relevantScore        = 10
	superRelevantTrigger = 10 // more than this many super-relevant candidates widens the cap
	relevantTrigger      = 5  // at least this many relevant candidates widens the cap
)

type scoredCandidate struct {
	id    int64
	score int
}

// relatednessScore is the weighted attribute similarity of target to source.
func relatednessScore(source, target *models.Product) int {
	score := 0
	if target.Collection == source.Collection {
		score += weightCollection
	}
	if target.Type == source.Type {
		score += weightType
	}
	if target.Decade == source.Decade {
		score += weightDecade
	}
	if target.Manufacturer == source.Manufacturer {
		score += weightManufacture
	}
	if target.Demographic == source.Demographic {
		score += weightDemographic
	} else if target.Demographic == models.DemographicNeutral || source.Demographic == models.DemographicNeutral {
		score += weightNeutral
	}
	return score
}

// relatedCap sizes a related list from its score-sorted candidates.
func relatedCap(sorted []scoredCandidate) int {
	superRelevant, relevant := 0, 0
	for _, c := range sorted {
		if c.score >= superRelevantScore {
			superRelevant++
		}
		if c.score >= relevantScore {
			relevant++
		}
	}

	switch {
	case superRelevant > superRelevantTrigger:
		return min(superRelevant, relatedMaxCap)
	case relevant >= relevantTrigger:
		return relatedWideCap
	default:
		return relatedDefaultCap
	}
}

// relatedIDs ranks every in-stock product against source. Sold-out products
// are never candidates, though they still get their own related list.
//
// The pass is O(n) per product and O(n²) for a whole catalog. That is fine at
// shop-window sizes; a large feed would need an indexed neighbour search.
func relatedIDs(source *models.Product, products []*models.Product) []int64 {
	candidates := make([]scoredCandidate, 0, len(products))
	for _, target := range products {
		if target.ID == source.ID || target.IsSold {
			continue
		}
		if score := relatednessScore(source, target); score > 0 {
			candidates = append(candidates, scoredCandidate{id: target.ID, score: score})
		}
	}

	// Ties keep catalog order.
	slices.SortStableFunc(candidates, func(a, b scoredCandidate) int {
		return b.score - a.score
	})

	limit := min(relatedCap(candidates), len(candidates))
	ids := make([]int64, 0, limit)
	for _, c := range candidates[:limit] {
		ids = append(ids, c.id)
	}
	return ids
}
