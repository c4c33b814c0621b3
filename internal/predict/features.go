// internal/predict/features.go

// Package predict provides the optional secondary predictive score. A
// trained linear model blends into the rule-based composite; a missing or
// stale model degrades to "unavailable" and never errors the scoring pass.
package predict

import (
	"time"

	"fretwatch/internal/collection"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

// FeatureOrder is the canonical feature sequence. Trained models depend on
// this exact ordering; never reorder, only append.
var FeatureOrder = []string{
	"year_numeric",
	"age",
	"price",
	"market_lo",
	"market_hi",
	"market_mid",
	"market_spread",
	"price_vs_market_mid",
	"price_vs_market_lo",
	"brand_tier",
	"condition_score",
	"is_golden_era",
	"iconic_boost",
	"player_score",
	"type_electric",
	"type_acoustic",
	"type_bass",
	"era_bucket",
	"collection_has_brand",
}

// FeatureCount is the width of a feature vector.
const FeatureCount = 19

// defaultYear stands in when a listing carries no build year.
const defaultYear = 1970

var conditionFeature = map[models.Condition]float64{
	models.ConditionMint:      100,
	models.ConditionNearMint:  95,
	models.ConditionExcellent: 85,
	models.ConditionVeryGood:  60,
	models.ConditionGood:      30,
	models.ConditionPoor:      0,
	models.ConditionUnknown:   50,
}

// Extractor builds feature vectors from listings using the same knowledge
// base the rule scorer consults.
type Extractor struct {
	kb *knowledge.Base
}

func NewExtractor(kb *knowledge.Base) *Extractor {
	return &Extractor{kb: kb}
}

// Extract converts one listing plus its valuation into the canonical
// feature vector. Missing values encode as zero except year, which falls
// back to a 1970 prior.
func (e *Extractor) Extract(
	listing models.ListingSnapshot,
	valuation models.ValuationResult,
	profile *collection.Profile,
) []float64 {
	year := defaultYear
	if listing.Year != nil {
		year = *listing.Year
	}

	price := 0.0
	if listing.Price != nil {
		price = *listing.Price
	}

	var lo, hi, mid, spread float64
	if valuation.Range.Resolved() {
		lo, hi = *valuation.Range.Lo, *valuation.Range.Hi
		mid = valuation.Range.Mid()
		spread = hi - lo
	}

	priceVsMid := 0.0
	if mid > 0 {
		priceVsMid = (price - mid) / mid
	}
	priceVsLo := 0.0
	if lo > 0 {
		priceVsLo = (price - lo) / lo
	}

	tier := 0.0
	switch e.kb.BrandTier(listing.Brand) {
	case knowledge.TierPremium:
		tier = 2
	case knowledge.TierMajor:
		tier = 1
	}

	isGolden := 0.0
	iconicBoost := 0.0
	playerScore := 0.0
	if m := e.kb.Match(listing.Brand, listing.Model); m != nil {
		playerScore = m.PlayerWeight()
		if max := e.kb.MaxPopularity(); max > 0 {
			iconicBoost = playerScore / max * 20
		}
		if m.GoldenEra != nil && m.GoldenEra.Contains(year) {
			isGolden = 1
		}
	}

	hasBrand := 0.0
	if profile != nil && profile.OwnsBrand(listing.Brand) {
		hasBrand = 1
	}

	return []float64{
		float64(year),
		float64(time.Now().Year() - year),
		price,
		lo,
		hi,
		mid,
		spread,
		priceVsMid,
		priceVsLo,
		tier,
		conditionFeature[listing.Condition],
		isGolden,
		iconicBoost,
		playerScore,
		boolFeature(listing.Type == models.TypeElectric),
		boolFeature(listing.Type == models.TypeAcoustic),
		boolFeature(listing.Type == models.TypeBass),
		float64(eraBucket(year)),
		hasBrand,
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// eraBucket maps a build year onto the table era index: 0=pre-1950,
// 1=1950-64, 2=1965-79, 3=1980-99, 4=2000+.
func eraBucket(year int) int {
	switch {
	case year < 1950:
		return 0
	case year < 1965:
		return 1
	case year < 1980:
		return 2
	case year < 2000:
		return 3
	default:
		return 4
	}
}
