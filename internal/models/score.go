// internal/models/score.go
package models

import "time"

// ScoreBreakdown is the ephemeral scoring output for one listing. It is
// recomputed every scoring run and only surfaced to the persistence sink,
// never read back as authoritative state.
type ScoreBreakdown struct {
	ListingID  string             `json:"listingId"`
	Dimensions map[string]float64 `json:"dimensions"`
	Composite  float64            `json:"composite"`
	Final      float64            `json:"final"`
	Blended    bool               `json:"blended"`

	Affordable   bool `json:"affordable"`
	PriceUnknown bool `json:"priceUnknown"`
	PartialData  bool `json:"partialData"`

	// Ranking tie-break inputs, carried so the ranker does not need the
	// snapshot batch again.
	Price      *float64  `json:"price,omitempty"`
	ObservedAt time.Time `json:"observedAt"`
}
