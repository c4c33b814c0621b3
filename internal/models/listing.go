// internal/models/listing.go
package models

import (
	"regexp"
	"strings"
	"time"
)

// GuitarType enumerates the instrument categories tracked by the scout.
type GuitarType string

const (
	TypeAcoustic GuitarType = "acoustic"
	TypeElectric GuitarType = "electric"
	TypeBass     GuitarType = "bass"
)

// ParseGuitarType maps free-form type strings ("Electric Guitar", "Acoustic")
// onto the enum. Unrecognized strings default to electric, matching how the
// sold-comps feeds categorize listings.
func ParseGuitarType(raw string) GuitarType {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "acoustic"):
		return TypeAcoustic
	case strings.Contains(s, "bass"):
		return TypeBass
	default:
		return TypeElectric
	}
}

// Condition is the ordered condition grade of a listing.
// Poor < Good < VeryGood < Excellent < NearMint < Mint; Unknown sorts nowhere.
type Condition string

const (
	ConditionPoor      Condition = "poor"
	ConditionGood      Condition = "good"
	ConditionVeryGood  Condition = "very_good"
	ConditionExcellent Condition = "excellent"
	ConditionNearMint  Condition = "near_mint"
	ConditionMint      Condition = "mint"
	ConditionUnknown   Condition = "unknown"
)

// ParseCondition maps dealer condition strings onto the graded enum.
// Modifier suffixes ("Excellent+", "Very Good-") collapse onto the base grade.
func ParseCondition(raw string) Condition {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimRight(s, "+-")
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ConditionUnknown
	case strings.HasPrefix(s, "mint"):
		return ConditionMint
	case strings.HasPrefix(s, "near mint") || strings.HasPrefix(s, "near-mint"):
		return ConditionNearMint
	case strings.HasPrefix(s, "excellent"):
		return ConditionExcellent
	case strings.HasPrefix(s, "very good") || strings.HasPrefix(s, "very-good"):
		return ConditionVeryGood
	case strings.HasPrefix(s, "good"):
		return ConditionGood
	case strings.HasPrefix(s, "poor") || strings.HasPrefix(s, "fair"):
		return ConditionPoor
	default:
		return ConditionUnknown
	}
}

// StatusHint is the listing status as read off the page.
type StatusHint string

const (
	StatusActive StatusHint = "active"
	StatusOnHold StatusHint = "on_hold"
)

// ListingSnapshot is an immutable observation of one listing at one scrape
// time. Each cycle produces a fresh batch; snapshots are never mutated.
type ListingSnapshot struct {
	ID         string     `json:"id"`
	Brand      string     `json:"brand"`
	Model      string     `json:"model"`
	Type       GuitarType `json:"type"`
	Year       *int       `json:"year,omitempty"`
	Condition  Condition  `json:"condition"`
	Price      *float64   `json:"price,omitempty"`
	SourceSite string     `json:"sourceSite"`
	URL        string     `json:"url"`
	ObservedAt time.Time  `json:"observedAt"`
	StatusHint StatusHint `json:"statusHint"`
}

var yearRe = regexp.MustCompile(`\d{4}`)

// ParseYear extracts the first 4-digit year from strings like "1965",
// "c.1965" or "1960s". Returns nil when no year is present.
func ParseYear(raw string) *int {
	m := yearRe.FindString(raw)
	if m == "" {
		return nil
	}
	y := 0
	for _, c := range m {
		y = y*10 + int(c-'0')
	}
	return &y
}
