// internal/valuation/valuator.go

// Package valuation resolves a market price band and a projected annual
// appreciation rate for one (brand, model, year). Rates come from a static
// era/tier table unless enough price history exists to learn one.
package valuation

import (
	"context"
	"math"
	"time"

	"fretwatch/internal/common/logger"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

// Era buckets the build year for the rate table. Boundary years belong to
// the later bucket.
type Era int

const (
	EraPrewar   Era = iota // <1950
	EraGolden              // 1950-1964
	EraVintage             // 1965-1979
	EraModern              // 1980-1999
	EraCurrent             // >=2000
)

// EraOf buckets a build year. A nil year falls into the most conservative
// bucket, EraCurrent.
func EraOf(year *int) Era {
	if year == nil {
		return EraCurrent
	}
	switch y := *year; {
	case y < 1950:
		return EraPrewar
	case y < 1965:
		return EraGolden
	case y < 1980:
		return EraVintage
	case y < 2000:
		return EraModern
	default:
		return EraCurrent
	}
}

// rateTable is the static annual appreciation rate, indexed [era][tier].
var rateTable = map[Era]map[knowledge.Tier]float64{
	EraPrewar:  {knowledge.TierPremium: 0.12, knowledge.TierMajor: 0.10, knowledge.TierMinor: 0.05},
	EraGolden:  {knowledge.TierPremium: 0.10, knowledge.TierMajor: 0.08, knowledge.TierMinor: 0.04},
	EraVintage: {knowledge.TierPremium: 0.06, knowledge.TierMajor: 0.05, knowledge.TierMinor: 0.03},
	EraModern:  {knowledge.TierPremium: 0.04, knowledge.TierMajor: 0.03, knowledge.TierMinor: 0.02},
	EraCurrent: {knowledge.TierPremium: 0.02, knowledge.TierMajor: 0.01, knowledge.TierMinor: 0.00},
}

// TableRate returns the static rate for an era/tier pair.
func TableRate(era Era, tier knowledge.Tier) float64 {
	return rateTable[era][tier]
}

const (
	// Learned rates need at least this much history between the earliest
	// and latest snapshot before they override the table.
	minLearnSpan = 30 * 24 * time.Hour

	learnedRateFloor = -0.20
	learnedRateCeil  = 0.30
)

// RangeLookup resolves a market price band for a (brand, model, year).
// Fuzzy matching is the implementation's concern; an unresolved model
// returns a range with both bounds nil, never an error for "not found".
type RangeLookup interface {
	Lookup(ctx context.Context, brand, model string, year *int) (models.PriceRange, error)
}

// HistoryStore returns the ordered historical price snapshots for a
// (brand, model), possibly empty.
type HistoryStore interface {
	History(ctx context.Context, brand, model string) ([]models.PricePoint, error)
}

// Valuator combines the market lookup, price history and knowledge base
// into a ValuationResult per listing.
type Valuator struct {
	kb      *knowledge.Base
	lookup  RangeLookup
	history HistoryStore
	logger  logger.Logger
}

func NewValuator(kb *knowledge.Base, lookup RangeLookup, history HistoryStore, log logger.Logger) *Valuator {
	return &Valuator{
		kb:      kb,
		lookup:  lookup,
		history: history,
		logger:  log.WithFields(map[string]interface{}{"component": "valuator"}),
	}
}

// Valuate resolves the price band and appreciation rate for one listing.
// Lookup and history failures degrade to an unresolved range and the table
// rate; Valuate itself never fails.
func (v *Valuator) Valuate(ctx context.Context, brand, model string, year *int) models.ValuationResult {
	var rng models.PriceRange
	if v.lookup != nil {
		r, err := v.lookup.Lookup(ctx, brand, model, year)
		if err != nil {
			v.logger.Warn("market lookup failed, treating range as unresolved", map[string]interface{}{
				"brand": brand,
				"model": model,
				"error": err.Error(),
			})
		} else {
			rng = r
		}
	}

	tier := v.kb.BrandTier(brand)
	rate := TableRate(EraOf(year), tier)

	learned := false
	if v.history != nil {
		points, err := v.history.History(ctx, brand, model)
		if err != nil {
			v.logger.Warn("price history unavailable, using table rate", map[string]interface{}{
				"brand": brand,
				"model": model,
				"error": err.Error(),
			})
		} else if lr, ok := LearnedRate(points); ok {
			rate = lr
			learned = true
		}
	}

	bonus := false
	if year != nil {
		if era := v.kb.GoldenEra(brand, model); era != nil && era.Contains(*year) {
			bonus = true
		}
	}

	return models.ValuationResult{
		Range:          rng,
		AnnualRate:     rate,
		LearnedRate:    learned,
		GoldenEraBonus: bonus,
	}
}

// LearnedRate derives an annualized appreciation rate from a price-snapshot
// series. Requires at least 30 days between the earliest and latest point
// and positive midpoints at both ends; the result is clamped to
// [-0.20, +0.30]. Returns ok=false when the series cannot support a rate.
func LearnedRate(points []models.PricePoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}

	earliest, latest := points[0], points[0]
	for _, p := range points[1:] {
		if p.ObservedAt.Before(earliest.ObservedAt) {
			earliest = p
		}
		if p.ObservedAt.After(latest.ObservedAt) {
			latest = p
		}
	}

	span := latest.ObservedAt.Sub(earliest.ObservedAt)
	if span < minLearnSpan {
		return 0, false
	}
	if earliest.Mid <= 0 || latest.Mid <= 0 {
		return 0, false
	}

	days := span.Hours() / 24
	rate := math.Pow(latest.Mid/earliest.Mid, 365/days) - 1

	if rate < learnedRateFloor {
		rate = learnedRateFloor
	}
	if rate > learnedRateCeil {
		rate = learnedRateCeil
	}
	return rate, true
}
