// internal/models/valuation.go
package models

import "time"

// PriceRange is a market price band. Both bounds nil means the market lookup
// could not resolve the model; consumers must treat that as insufficient
// data, never as zero.
type PriceRange struct {
	Lo *float64 `json:"lo,omitempty"`
	Hi *float64 `json:"hi,omitempty"`
}

// Resolved reports whether both bounds are present.
func (r PriceRange) Resolved() bool {
	return r.Lo != nil && r.Hi != nil
}

// Mid returns the midpoint of a resolved range.
func (r PriceRange) Mid() float64 {
	return (*r.Lo + *r.Hi) / 2
}

// ValuationResult is the market valuation of one (brand, model, year).
type ValuationResult struct {
	Range          PriceRange `json:"range"`
	AnnualRate     float64    `json:"annualRate"`
	LearnedRate    bool       `json:"learnedRate"`
	GoldenEraBonus bool       `json:"goldenEraBonus"`
}

// PricePoint is one historical market snapshot for a (brand, model).
type PricePoint struct {
	ObservedAt time.Time `json:"observedAt"`
	Lo         float64   `json:"lo"`
	Hi         float64   `json:"hi"`
	Mid        float64   `json:"mid"`
}
