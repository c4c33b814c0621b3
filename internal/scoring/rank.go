// internal/scoring/rank.go
package scoring

import (
	"sort"

	"fretwatch/internal/models"
)

// Rank sorts breakdowns by final score descending, breaking ties by lower
// price first (unknown price after known), then earlier observation, and
// truncates to topN. The input slice is not modified.
func Rank(breakdowns []models.ScoreBreakdown, topN int) []models.ScoreBreakdown {
	ranked := make([]models.ScoreBreakdown, len(breakdowns))
	copy(ranked, breakdowns)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Final != b.Final {
			return a.Final > b.Final
		}
		switch {
		case a.Price != nil && b.Price != nil && *a.Price != *b.Price:
			return *a.Price < *b.Price
		case a.Price != nil && b.Price == nil:
			return true
		case a.Price == nil && b.Price != nil:
			return false
		}
		return a.ObservedAt.Before(b.ObservedAt)
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
