// internal/collection/profile.go

// Package collection derives the owned-instrument profile the scoring
// engine diversifies against.
package collection

import (
	"context"
	"strings"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

// Profile is a read-only view over the owned collection, recomputed each
// scoring run.
type Profile struct {
	total       int
	brandCounts map[string]int
	typeCounts  map[models.GuitarType]int
	ownedPairs  map[string]bool
}

// NewProfile derives a Profile from the owned set.
func NewProfile(owned []models.OwnedGuitar) *Profile {
	p := &Profile{
		total:       len(owned),
		brandCounts: make(map[string]int),
		typeCounts:  make(map[models.GuitarType]int),
		ownedPairs:  make(map[string]bool),
	}
	for _, g := range owned {
		p.brandCounts[normalizeKey(g.Brand)]++
		p.typeCounts[g.Type]++
		p.ownedPairs[pairKey(g.Brand, g.Model)] = true
	}
	return p
}

// Empty reports whether no instruments are owned. An empty collection
// gives the scoring engine no brand or type signal.
func (p *Profile) Empty() bool {
	return p.total == 0
}

// OwnsBrand reports whether any owned instrument carries this brand.
func (p *Profile) OwnsBrand(brand string) bool {
	return p.brandCounts[normalizeKey(brand)] > 0
}

// OwnsPair reports whether the exact (brand, model) pair is already owned.
func (p *Profile) OwnsPair(brand, model string) bool {
	return p.ownedPairs[pairKey(brand, model)]
}

// TypeShare returns the fraction of the owned collection with this type.
func (p *Profile) TypeShare(t models.GuitarType) float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.typeCounts[t]) / float64(p.total)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func pairKey(brand, model string) string {
	return normalizeKey(brand) + "|" + normalizeKey(model)
}

// Loader reads the owned collection from Postgres.
type Loader struct {
	db *database.PostgresClient
}

func NewLoader(db *database.PostgresClient) *Loader {
	return &Loader{db: db}
}

const ownedQuery = `
	SELECT brand, model, guitar_type, year
	FROM owned_guitars
	ORDER BY brand, model`

// LoadOwned reads every owned instrument.
func (l *Loader) LoadOwned(ctx context.Context) ([]models.OwnedGuitar, error) {
	rows, err := l.db.Query(ctx, ownedQuery)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load owned guitars", err)
	}
	defer rows.Close()

	var owned []models.OwnedGuitar
	for rows.Next() {
		var (
			g       models.OwnedGuitar
			rawType string
		)
		if err := rows.Scan(&g.Brand, &g.Model, &rawType, &g.Year); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan owned guitar", err)
		}
		g.Type = models.ParseGuitarType(rawType)
		owned = append(owned, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate owned guitars", err)
	}
	return owned, nil
}
