// internal/valuation/valuator_test.go
package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fretwatch/internal/common/logger"
	"fretwatch/internal/knowledge"
	"fretwatch/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

type stubLookup struct {
	rng models.PriceRange
	err error
}

func (s *stubLookup) Lookup(ctx context.Context, brand, model string, year *int) (models.PriceRange, error) {
	return s.rng, s.err
}

type stubHistory struct {
	points []models.PricePoint
	err    error
}

func (s *stubHistory) History(ctx context.Context, brand, model string) ([]models.PricePoint, error) {
	return s.points, s.err
}

func TestEraOf(t *testing.T) {
	tests := []struct {
		name string
		year *int
		want Era
	}{
		{"prewar", intPtr(1942), EraPrewar},
		{"boundary 1950 belongs to later bucket", intPtr(1950), EraGolden},
		{"golden", intPtr(1959), EraGolden},
		{"boundary 1965", intPtr(1965), EraVintage},
		{"vintage", intPtr(1972), EraVintage},
		{"boundary 1980", intPtr(1980), EraModern},
		{"boundary 2000", intPtr(2000), EraCurrent},
		{"recent", intPtr(2019), EraCurrent},
		{"missing year is conservative", nil, EraCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EraOf(tt.year))
		})
	}
}

func TestTableRate(t *testing.T) {
	assert.InDelta(t, 0.12, TableRate(EraPrewar, knowledge.TierPremium), 1e-9)
	assert.InDelta(t, 0.08, TableRate(EraGolden, knowledge.TierMajor), 1e-9)
	assert.InDelta(t, 0.03, TableRate(EraVintage, knowledge.TierMinor), 1e-9)
	assert.InDelta(t, 0.04, TableRate(EraModern, knowledge.TierPremium), 1e-9)
	assert.InDelta(t, 0.00, TableRate(EraCurrent, knowledge.TierMinor), 1e-9)
}

func TestLearnedRate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("annualizes over span", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base, Mid: 1000},
			{ObservedAt: base.AddDate(1, 0, 0), Mid: 1100},
		}
		rate, ok := LearnedRate(points)
		require.True(t, ok)
		assert.InDelta(t, 0.10, rate, 0.001)
	})

	t.Run("order independent", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base.AddDate(1, 0, 0), Mid: 1100},
			{ObservedAt: base.AddDate(0, 6, 0), Mid: 1050},
			{ObservedAt: base, Mid: 1000},
		}
		rate, ok := LearnedRate(points)
		require.True(t, ok)
		assert.InDelta(t, 0.10, rate, 0.001)
	})

	t.Run("clamped above", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base, Mid: 1000},
			{ObservedAt: base.AddDate(0, 0, 40), Mid: 2000},
		}
		rate, ok := LearnedRate(points)
		require.True(t, ok)
		assert.InDelta(t, 0.30, rate, 1e-9)
	})

	t.Run("clamped below", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base, Mid: 2000},
			{ObservedAt: base.AddDate(0, 0, 40), Mid: 500},
		}
		rate, ok := LearnedRate(points)
		require.True(t, ok)
		assert.InDelta(t, -0.20, rate, 1e-9)
	})

	t.Run("span under 30 days rejected", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base, Mid: 1000},
			{ObservedAt: base.AddDate(0, 0, 29), Mid: 1200},
		}
		_, ok := LearnedRate(points)
		assert.False(t, ok)
	})

	t.Run("single point rejected", func(t *testing.T) {
		_, ok := LearnedRate([]models.PricePoint{{ObservedAt: base, Mid: 1000}})
		assert.False(t, ok)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, ok := LearnedRate(nil)
		assert.False(t, ok)
	})

	t.Run("non-positive mid rejected", func(t *testing.T) {
		points := []models.PricePoint{
			{ObservedAt: base, Mid: 0},
			{ObservedAt: base.AddDate(0, 2, 0), Mid: 1200},
		}
		_, ok := LearnedRate(points)
		assert.False(t, ok)
	})
}

func TestValuate(t *testing.T) {
	kb := knowledge.Default()
	log := logger.NewNoOpLogger()

	t.Run("table rate for premium prewar", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{rng: models.PriceRange{Lo: floatPtr(8000), Hi: floatPtr(12000)}}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Gibson", "L-5", intPtr(1938))
		assert.InDelta(t, 0.12, res.AnnualRate, 1e-9)
		assert.False(t, res.LearnedRate)
		assert.True(t, res.Range.Resolved())
	})

	t.Run("learned rate overrides table", func(t *testing.T) {
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		hist := &stubHistory{points: []models.PricePoint{
			{ObservedAt: base, Mid: 1000},
			{ObservedAt: base.AddDate(1, 0, 0), Mid: 1150},
		}}
		v := NewValuator(kb, &stubLookup{}, hist, log)
		res := v.Valuate(context.Background(), "Gibson", "Les Paul", intPtr(1959))
		assert.True(t, res.LearnedRate)
		assert.InDelta(t, 0.15, res.AnnualRate, 0.001)
	})

	t.Run("golden era bonus flagged", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Fender", "Stratocaster", intPtr(1962))
		assert.True(t, res.GoldenEraBonus)
	})

	t.Run("no bonus outside era", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Fender", "Stratocaster", intPtr(1990))
		assert.False(t, res.GoldenEraBonus)
	})

	t.Run("missing year defaults to current-era column", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Gibson", "ES-335", nil)
		assert.InDelta(t, 0.02, res.AnnualRate, 1e-9)
		assert.False(t, res.GoldenEraBonus)
		assert.False(t, res.Range.Resolved())
	})

	t.Run("lookup failure degrades to unresolved range", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{err: assert.AnError}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Gibson", "SG", intPtr(1968))
		assert.False(t, res.Range.Resolved())
		assert.InDelta(t, 0.06, res.AnnualRate, 1e-9)
	})

	t.Run("history failure keeps table rate", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{}, &stubHistory{err: assert.AnError}, log)
		res := v.Valuate(context.Background(), "Fender", "Telecaster", intPtr(1952))
		assert.False(t, res.LearnedRate)
		assert.InDelta(t, 0.10, res.AnnualRate, 1e-9)
	})

	t.Run("minor tier for unknown brand", func(t *testing.T) {
		v := NewValuator(kb, &stubLookup{}, &stubHistory{}, log)
		res := v.Valuate(context.Background(), "Harmony", "Rocket", intPtr(1963))
		assert.InDelta(t, 0.04, res.AnnualRate, 1e-9)
	})
}
