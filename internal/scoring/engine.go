// internal/scoring/engine.go

// Package scoring computes the weighted multi-dimensional desirability
// score for one listing and ranks candidates against the remaining budget.
// Every dimension lands in [0,100]; missing data degrades a dimension to
// its neutral default instead of failing the listing.
package scoring

import (
	"fretwatch/internal/collection"
	"fretwatch/internal/common/config"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

// Dimension names recognized by the engine. The active set per run is
// exactly the keys of the configured weight map.
const (
	DimValue      = "value"
	DimAppreciate = "appreciate"
	DimFit        = "fit"
	DimCondition  = "condition"
	DimIconic     = "iconic"
)

const neutralScore = 50.0

// conditionScores is the fixed condition table.
var conditionScores = map[models.Condition]float64{
	models.ConditionMint:      100,
	models.ConditionNearMint:  95,
	models.ConditionExcellent: 85,
	models.ConditionVeryGood:  60,
	models.ConditionGood:      30,
	models.ConditionPoor:      0,
	models.ConditionUnknown:   neutralScore,
}

// Engine scores listings against the knowledge base, the owned-collection
// profile and the budget weights.
type Engine struct {
	kb     *knowledge.Base
	budget config.BudgetConfig
	logger logger.Logger
}

func NewEngine(kb *knowledge.Base, budget config.BudgetConfig, log logger.Logger) *Engine {
	return &Engine{
		kb:     kb,
		budget: budget,
		logger: log.WithFields(map[string]interface{}{"component": "scoring-engine"}),
	}
}

// Score computes the full breakdown for one listing. secondary is the
// optional predictive score; pass nil when no model is available and the
// composite is used unblended.
func (e *Engine) Score(
	listing models.ListingSnapshot,
	valuation models.ValuationResult,
	profile *collection.Profile,
	secondary *float64,
) models.ScoreBreakdown {
	dims := make(map[string]float64, len(e.budget.Weights))
	partial := false

	for dim := range e.budget.Weights {
		switch dim {
		case DimValue:
			v, complete := ValueScore(listing.Price, valuation.Range)
			dims[dim] = v
			partial = partial || !complete
		case DimAppreciate:
			dims[dim] = AppreciationScore(valuation.AnnualRate, valuation.GoldenEraBonus)
		case DimFit:
			dims[dim] = e.fitScore(listing, profile)
		case DimCondition:
			dims[dim] = ConditionScore(listing.Condition)
			partial = partial || listing.Condition == models.ConditionUnknown
		case DimIconic:
			dims[dim] = e.iconicScore(listing.Brand, listing.Model)
		}
	}

	composite := Composite(dims, e.budget.Weights)

	final := composite
	blended := false
	if e.budget.MLEnabled && secondary != nil {
		final = (1-e.budget.MLBlend)*composite + e.budget.MLBlend*clamp(*secondary)
		blended = true
	}

	affordable := true
	priceUnknown := listing.Price == nil
	if listing.Price != nil {
		affordable = *listing.Price <= e.budget.Remaining()
	}

	return models.ScoreBreakdown{
		ListingID:    listing.ID,
		Dimensions:   dims,
		Composite:    composite,
		Final:        final,
		Blended:      blended,
		Affordable:   affordable,
		PriceUnknown: priceUnknown,
		PartialData:  partial || priceUnknown || !valuation.Range.Resolved(),
		Price:        listing.Price,
		ObservedAt:   listing.ObservedAt,
	}
}

// ValueScore is piecewise linear in price against the market band:
// 100 at or below lo, 75 at the midpoint, 50 at hi, 0 at 2*hi. Missing
// price or an unresolved band is neutral, not penalized; complete=false
// reports that case.
func ValueScore(price *float64, rng models.PriceRange) (score float64, complete bool) {
	if price == nil || !rng.Resolved() {
		return neutralScore, false
	}

	p := *price
	lo, hi := *rng.Lo, *rng.Hi
	mid := (lo + hi) / 2

	switch {
	case p <= lo:
		return 100, true
	case p <= mid:
		return clamp(interpolate(p, lo, 100, mid, 75)), true
	case p <= hi:
		return clamp(interpolate(p, mid, 75, hi, 50)), true
	case p <= 2*hi:
		return clamp(interpolate(p, hi, 50, 2*hi, 0)), true
	default:
		return 0, true
	}
}

// interpolate maps x linearly from (x0,y0)-(x1,y1).
func interpolate(x, x0, y0, x1, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// AppreciationScore maps the annual rate from [0, 0.12] onto [0,100], then
// applies the flat golden-era bonus.
func AppreciationScore(annualRate float64, goldenEra bool) float64 {
	s := clamp(annualRate / 0.12 * 100)
	if goldenEra {
		s = clamp(s + 20)
	}
	return s
}

// ConditionScore is a direct table lookup; unrecognized grades are neutral.
func ConditionScore(c models.Condition) float64 {
	if s, ok := conditionScores[c]; ok {
		return s
	}
	return neutralScore
}

// fitScore measures how well a listing diversifies the owned collection.
// An empty collection yields exactly the neutral base for every listing.
func (e *Engine) fitScore(listing models.ListingSnapshot, profile *collection.Profile) float64 {
	if profile == nil || profile.Empty() {
		return neutralScore
	}

	s := neutralScore
	if !profile.OwnsBrand(listing.Brand) {
		s += 20
	}
	if profile.TypeShare(listing.Type) < 0.25 {
		s += 15
	}
	if profile.OwnsPair(listing.Brand, listing.Model) {
		s -= 25
	}
	s += e.iconicBoost(listing.Brand, listing.Model)
	return clamp(s)
}

// iconicBoost is the 0-20 fit bonus for models with notable-player
// associations, proportional to the normalized popularity.
func (e *Engine) iconicBoost(brand, model string) float64 {
	max := e.kb.MaxPopularity()
	if max <= 0 {
		return 0
	}
	return e.kb.Popularity(brand, model) / max * 20
}

// iconicScore is the popularity of the model normalized onto [0,100].
func (e *Engine) iconicScore(brand, model string) float64 {
	max := e.kb.MaxPopularity()
	if max <= 0 {
		return 0
	}
	return clamp(e.kb.Popularity(brand, model) / max * 100)
}

// Composite is the weighted sum over the active dimensions, with weights
// renormalized so any positive subset still lands in [0,100].
func Composite(dims map[string]float64, weights map[string]float64) float64 {
	var sum, weightSum float64
	for dim, w := range weights {
		v, ok := dims[dim]
		if !ok {
			continue
		}
		sum += w * v
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return clamp(sum / weightSum)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
