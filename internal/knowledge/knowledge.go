// internal/knowledge/knowledge.go
package knowledge

import (
	"strings"
)

// Tier classifies a brand for appreciation-rate purposes.
type Tier string

const (
	TierPremium Tier = "premium"
	TierMajor   Tier = "major"
	TierMinor   Tier = "minor"
)

// YearRange is an inclusive golden-era year span for an iconic model.
type YearRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether year falls inside the range (inclusive).
func (r YearRange) Contains(year int) bool {
	return year >= r.Lo && year <= r.Hi
}

// Player is a notable guitarist associated with an iconic model. Weight
// reflects prominence and feeds the popularity score.
type Player struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// IconicModel is one curated knowledge-base entry: a model with an optional
// golden-era year range and its notable-player associations.
type IconicModel struct {
	Brand     string     `json:"brand"`
	Model     string     `json:"model"`
	GoldenEra *YearRange `json:"goldenEra,omitempty"`
	Players   []Player   `json:"players,omitempty"`
}

// PlayerWeight sums the weights of all associated players.
func (m IconicModel) PlayerWeight() float64 {
	var w float64
	for _, p := range m.Players {
		w += p.Weight
	}
	return w
}

// Base is the read-only curated knowledge base consulted at scoring time.
// Brand tier entries are ordered; the first entry whose normalized name
// satisfies bidirectional containment wins. Iconic-model matching prefers
// the entry with the longest normalized model name.
type Base struct {
	premiumBrands []string
	majorBrands   []string
	iconic        []IconicModel

	maxPlayerWeight float64
}

// New builds a Base from curated entries. Pass nil slices to fall back to
// the built-in curated data.
func New(premium, major []string, iconic []IconicModel) *Base {
	b := &Base{
		premiumBrands: premium,
		majorBrands:   major,
		iconic:        iconic,
	}
	for _, m := range iconic {
		if w := m.PlayerWeight(); w > b.maxPlayerWeight {
			b.maxPlayerWeight = w
		}
	}
	return b
}

// Default returns the built-in curated knowledge base.
func Default() *Base {
	return New(defaultPremiumBrands, defaultMajorBrands, defaultIconicModels)
}

// normalize strips everything but letters and digits and casefolds, so
// that "C. F. Martin" and "Martin" compare equal under containment and
// numeric model names like "ES-335" keep their digits.
func normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// contains is the bidirectional substring test used for all fuzzy
// knowledge-base matching.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// BrandTier resolves a listing brand to its tier. Matching is
// case/punctuation-insensitive containment in declaration order; no match
// defaults to Minor.
func (b *Base) BrandTier(brand string) Tier {
	n := normalize(brand)
	for _, p := range b.premiumBrands {
		if contains(n, normalize(p)) {
			return TierPremium
		}
	}
	for _, m := range b.majorBrands {
		if contains(n, normalize(m)) {
			return TierMajor
		}
	}
	return TierMinor
}

// Match finds the iconic-model entry for a (brand, model) pair, or nil.
// The brand must match under containment; among model matches the longest
// normalized knowledge-base model name wins, which keeps "Les Paul Custom"
// ahead of "Les Paul" for a "Les Paul Custom" listing.
func (b *Base) Match(brand, model string) *IconicModel {
	nb := normalize(brand)
	nm := normalize(model)
	var best *IconicModel
	bestLen := 0
	for i := range b.iconic {
		entry := &b.iconic[i]
		if !contains(nb, normalize(entry.Brand)) {
			continue
		}
		em := normalize(entry.Model)
		if !contains(nm, em) {
			continue
		}
		if len(em) > bestLen {
			best = entry
			bestLen = len(em)
		}
	}
	return best
}

// GoldenEra returns the golden-era range for a (brand, model), or nil when
// the model is not iconic or has no curated era.
func (b *Base) GoldenEra(brand, model string) *YearRange {
	if m := b.Match(brand, model); m != nil {
		return m.GoldenEra
	}
	return nil
}

// Popularity returns the weighted notable-player count for a (brand, model).
// Zero when the model has no iconic entry.
func (b *Base) Popularity(brand, model string) float64 {
	if m := b.Match(brand, model); m != nil {
		return m.PlayerWeight()
	}
	return 0
}

// MaxPopularity is the largest weighted player count across the base, used
// to normalize the iconic dimension onto [0,100].
func (b *Base) MaxPopularity() float64 {
	return b.maxPlayerWeight
}
