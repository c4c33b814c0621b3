// internal/history/store.go

// Package history persists market price snapshots per (brand, model). The
// valuator learns appreciation rates from these series once they span
// enough time.
package history

import (
	"context"
	"strings"
	"time"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

// Store reads and appends price-history rows in Postgres.
type Store struct {
	db *database.PostgresClient
}

func NewStore(db *database.PostgresClient) *Store {
	return &Store{db: db}
}

func seriesKey(brand, model string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "|" + strings.ToLower(strings.TrimSpace(model))
}

const historyQuery = `
	SELECT observed_at, price_lo, price_hi
	FROM price_history
	WHERE series_key = $1
	ORDER BY observed_at ASC`

// History returns the ordered snapshot series for a (brand, model),
// possibly empty.
func (s *Store) History(ctx context.Context, brand, model string) ([]models.PricePoint, error) {
	rows, err := s.db.Query(ctx, historyQuery, seriesKey(brand, model))
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load price history", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ObservedAt, &p.Lo, &p.Hi); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan price point", err)
		}
		p.Mid = (p.Lo + p.Hi) / 2
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate price history", err)
	}
	return points, nil
}

const appendQuery = `
	INSERT INTO price_history (series_key, observed_at, price_lo, price_hi)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (series_key, observed_at) DO NOTHING`

// Append records one resolved market band observation. Unresolved bands
// are skipped silently; they carry no rate signal.
func (s *Store) Append(ctx context.Context, brand, model string, rng models.PriceRange, observedAt time.Time) error {
	if !rng.Resolved() {
		return nil
	}
	if _, err := s.db.Exec(ctx, appendQuery, seriesKey(brand, model), observedAt, *rng.Lo, *rng.Hi); err != nil {
		return apperrors.NewQueryExecutionFailedError("append price point", err)
	}
	return nil
}
