// internal/scoring/engine_test.go
package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fretwatch/internal/collection"
	"fretwatch/internal/common/config"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func resolvedRange(lo, hi float64) models.PriceRange {
	return models.PriceRange{Lo: &lo, Hi: &hi}
}

func defaultBudget() config.BudgetConfig {
	return config.BudgetConfig{
		Total: 20000,
		Weights: map[string]float64{
			DimValue:      0.30,
			DimAppreciate: 0.25,
			DimFit:        0.25,
			DimCondition:  0.20,
		},
		TopN: 10,
	}
}

func newTestEngine(budget config.BudgetConfig) *Engine {
	return NewEngine(knowledge.Default(), budget, logger.NewNoOpLogger())
}

func TestValueScore(t *testing.T) {
	rng := resolvedRange(2000, 4000)

	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{"below low", 1500, 100},
		{"at low", 2000, 100},
		{"between low and mid", 2500, 87.5},
		{"at midpoint", 3000, 75},
		{"between mid and high", 3500, 62.5},
		{"at high", 4000, 50},
		{"between high and double", 6000, 25},
		{"at double high", 8000, 0},
		{"above double high", 12000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, complete := ValueScore(&tt.price, rng)
			assert.True(t, complete)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValueScore_Monotonic(t *testing.T) {
	rng := resolvedRange(2000, 4000)
	prev := 101.0
	for p := 1000.0; p <= 9000; p += 50 {
		price := p
		got, _ := ValueScore(&price, rng)
		assert.LessOrEqual(t, got, prev, "value must not increase with price (p=%v)", p)
		prev = got
	}
}

func TestValueScore_MissingData(t *testing.T) {
	got, complete := ValueScore(nil, resolvedRange(2000, 4000))
	assert.InDelta(t, 50.0, got, 1e-9)
	assert.False(t, complete)

	price := 3000.0
	got, complete = ValueScore(&price, models.PriceRange{})
	assert.InDelta(t, 50.0, got, 1e-9)
	assert.False(t, complete)
}

func TestAppreciationScore(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		goldenEra bool
		want      float64
	}{
		{"zero rate", 0, false, 0},
		{"half scale", 0.06, false, 50},
		{"full scale", 0.12, false, 100},
		{"above scale clamps", 0.30, false, 100},
		{"negative clamps", -0.10, false, 0},
		{"golden era adds twenty", 0.06, true, 70},
		{"golden era reclamps", 0.11, true, 100},
		{"golden era from zero", 0, true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AppreciationScore(tt.rate, tt.goldenEra), 1e-9)
		})
	}
}

func TestConditionScore(t *testing.T) {
	tests := []struct {
		cond models.Condition
		want float64
	}{
		{models.ConditionMint, 100},
		{models.ConditionNearMint, 95},
		{models.ConditionExcellent, 85},
		{models.ConditionVeryGood, 60},
		{models.ConditionGood, 30},
		{models.ConditionPoor, 0},
		{models.ConditionUnknown, 50},
		{models.Condition("weird"), 50},
	}

	for _, tt := range tests {
		t.Run(string(tt.cond), func(t *testing.T) {
			assert.InDelta(t, tt.want, ConditionScore(tt.cond), 1e-9)
		})
	}
}

func TestFitScore_EmptyCollection(t *testing.T) {
	e := newTestEngine(defaultBudget())
	listing := models.ListingSnapshot{
		ID: "g-1", Brand: "Fender", Model: "Stratocaster", Type: models.TypeElectric,
	}

	got := e.fitScore(listing, collection.NewProfile(nil))
	assert.InDelta(t, 50.0, got, 1e-9)

	got = e.fitScore(listing, nil)
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestFitScore(t *testing.T) {
	e := newTestEngine(defaultBudget())
	profile := collection.NewProfile([]models.OwnedGuitar{
		{Brand: "Gibson", Model: "ES-335", Type: models.TypeElectric},
		{Brand: "Gibson", Model: "Les Paul", Type: models.TypeElectric},
		{Brand: "Martin", Model: "D-28", Type: models.TypeAcoustic},
		{Brand: "Fender", Model: "Telecaster", Type: models.TypeElectric},
	})

	t.Run("new brand and scarce type", func(t *testing.T) {
		// Gretsch not owned (+20), bass share 0 (<25%, +15), no iconic boost.
		listing := models.ListingSnapshot{Brand: "Gretsch", Model: "Broadkaster Bass", Type: models.TypeBass}
		assert.InDelta(t, 85.0, e.fitScore(listing, profile), 1e-9)
	})

	t.Run("duplicate pair penalized", func(t *testing.T) {
		// Owned brand, electric share 75%, exact pair owned (-25),
		// ES-335 popularity 4/10 -> +8 boost.
		listing := models.ListingSnapshot{Brand: "Gibson", Model: "ES-335", Type: models.TypeElectric}
		assert.InDelta(t, 33.0, e.fitScore(listing, profile), 1e-9)
	})

	t.Run("iconic boost proportional to popularity", func(t *testing.T) {
		// Fender owned, acoustic share 25% exactly (not <25%), Stratocaster
		// popularity 10/10 -> +20 boost.
		listing := models.ListingSnapshot{Brand: "Fender", Model: "Stratocaster", Type: models.TypeElectric}
		assert.InDelta(t, 70.0, e.fitScore(listing, profile), 1e-9)
	})
}

func TestIconicScore(t *testing.T) {
	e := newTestEngine(defaultBudget())

	assert.InDelta(t, 100.0, e.iconicScore("Fender", "Stratocaster"), 1e-9)
	assert.InDelta(t, 80.0, e.iconicScore("Gibson", "Les Paul"), 1e-9)
	assert.InDelta(t, 0.0, e.iconicScore("Harmony", "Rocket"), 1e-9)
}

func TestComposite_Renormalization(t *testing.T) {
	dims := map[string]float64{
		DimValue: 80,
		DimFit:   60,
	}

	t.Run("weights renormalized over active subset", func(t *testing.T) {
		weights := map[string]float64{DimValue: 0.3, DimFit: 0.1}
		// (0.3*80 + 0.1*60) / 0.4 = 75
		assert.InDelta(t, 75.0, Composite(dims, weights), 1e-9)
	})

	t.Run("inactive weight keys excluded", func(t *testing.T) {
		weights := map[string]float64{DimValue: 0.5, DimCondition: 0.5}
		assert.InDelta(t, 80.0, Composite(dims, weights), 1e-9)
	})

	t.Run("stays in range for arbitrary positive weights", func(t *testing.T) {
		weights := map[string]float64{DimValue: 7, DimFit: 13}
		got := Composite(dims, weights)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	})

	t.Run("no active dimensions", func(t *testing.T) {
		assert.InDelta(t, 0.0, Composite(map[string]float64{}, map[string]float64{DimValue: 1}), 1e-9)
	})
}

func TestScore_MLBlend(t *testing.T) {
	listing := models.ListingSnapshot{
		ID: "g-1", Brand: "Gibson", Model: "ES-335", Type: models.TypeElectric,
		Condition: models.ConditionExcellent, Price: floatPtr(3000),
		ObservedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	valuation := models.ValuationResult{Range: resolvedRange(2000, 4000), AnnualRate: 0.06}
	profile := collection.NewProfile(nil)

	t.Run("disabled ignores secondary", func(t *testing.T) {
		e := newTestEngine(defaultBudget())
		got := e.Score(listing, valuation, profile, floatPtr(99))
		assert.InDelta(t, got.Composite, got.Final, 1e-9)
		assert.False(t, got.Blended)
	})

	t.Run("enabled blends", func(t *testing.T) {
		budget := defaultBudget()
		budget.MLEnabled = true
		budget.MLBlend = 0.4
		e := newTestEngine(budget)
		got := e.Score(listing, valuation, profile, floatPtr(90))
		want := 0.6*got.Composite + 0.4*90
		assert.InDelta(t, want, got.Final, 1e-9)
		assert.True(t, got.Blended)
	})

	t.Run("enabled without secondary falls back", func(t *testing.T) {
		budget := defaultBudget()
		budget.MLEnabled = true
		budget.MLBlend = 0.4
		e := newTestEngine(budget)
		got := e.Score(listing, valuation, profile, nil)
		assert.InDelta(t, got.Composite, got.Final, 1e-9)
		assert.False(t, got.Blended)
	})
}

func TestScore_Affordability(t *testing.T) {
	valuation := models.ValuationResult{Range: resolvedRange(2000, 4000), AnnualRate: 0.06}
	profile := collection.NewProfile(nil)

	budget := defaultBudget()
	budget.Total = 5000
	budget.Spent = 2000
	e := newTestEngine(budget)

	t.Run("within remaining budget", func(t *testing.T) {
		listing := models.ListingSnapshot{ID: "g-1", Brand: "Gibson", Model: "SG", Price: floatPtr(2999)}
		got := e.Score(listing, valuation, profile, nil)
		assert.True(t, got.Affordable)
		assert.False(t, got.PriceUnknown)
	})

	t.Run("over remaining budget", func(t *testing.T) {
		listing := models.ListingSnapshot{ID: "g-2", Brand: "Gibson", Model: "SG", Price: floatPtr(3001)}
		got := e.Score(listing, valuation, profile, nil)
		assert.False(t, got.Affordable)
	})

	t.Run("unknown price stays in, flagged", func(t *testing.T) {
		listing := models.ListingSnapshot{ID: "g-3", Brand: "Gibson", Model: "SG"}
		got := e.Score(listing, valuation, profile, nil)
		assert.True(t, got.Affordable)
		assert.True(t, got.PriceUnknown)
		assert.True(t, got.PartialData)
	})
}

func TestScore_ActiveDimensionSet(t *testing.T) {
	budget := defaultBudget()
	budget.Weights = map[string]float64{DimCondition: 0.6, DimIconic: 0.4}
	e := newTestEngine(budget)

	listing := models.ListingSnapshot{
		ID: "g-1", Brand: "Fender", Model: "Stratocaster",
		Condition: models.ConditionMint, Price: floatPtr(3000),
	}
	got := e.Score(listing, models.ValuationResult{}, collection.NewProfile(nil), nil)

	assert.Len(t, got.Dimensions, 2)
	assert.Contains(t, got.Dimensions, DimCondition)
	assert.Contains(t, got.Dimensions, DimIconic)
	// 0.6*100 + 0.4*100
	assert.InDelta(t, 100.0, got.Composite, 1e-9)
}

func TestScore_DimensionsInRange(t *testing.T) {
	budget := defaultBudget()
	budget.Weights[DimIconic] = 0.1
	budget.Weights[DimValue] = 0.2
	e := newTestEngine(budget)

	listings := []models.ListingSnapshot{
		{ID: "a", Brand: "Gibson", Model: "Les Paul", Condition: models.ConditionMint, Price: floatPtr(100)},
		{ID: "b", Brand: "Nameless", Model: "Thing", Condition: models.ConditionPoor, Price: floatPtr(1e9)},
		{ID: "c", Brand: "Fender", Model: "Stratocaster"},
	}
	valuation := models.ValuationResult{Range: resolvedRange(2000, 4000), AnnualRate: 0.5, GoldenEraBonus: true}

	for _, l := range listings {
		got := e.Score(l, valuation, collection.NewProfile(nil), nil)
		for dim, v := range got.Dimensions {
			assert.GreaterOrEqual(t, v, 0.0, "dim %s", dim)
			assert.LessOrEqual(t, v, 100.0, "dim %s", dim)
		}
		assert.GreaterOrEqual(t, got.Composite, 0.0)
		assert.LessOrEqual(t, got.Composite, 100.0)
	}
}
