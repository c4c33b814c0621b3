// internal/sink/sink.go

// Package sink persists scoring output and lifecycle events to Postgres
// for export and audit. Rows here are a rendering surface, never read back
// as authoritative state.
package sink

import (
	"context"
	"encoding/json"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/models"
)

type Sink struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func New(db *database.PostgresClient, log logger.Logger) *Sink {
	return &Sink{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "sink"}),
	}
}

const upsertScoreQuery = `
	INSERT INTO listing_scores
		(listing_id, dimensions, composite, final, blended, affordable, price_unknown, partial_data, price, observed_at, scored_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	ON CONFLICT (listing_id) DO UPDATE SET
		dimensions = EXCLUDED.dimensions,
		composite = EXCLUDED.composite,
		final = EXCLUDED.final,
		blended = EXCLUDED.blended,
		affordable = EXCLUDED.affordable,
		price_unknown = EXCLUDED.price_unknown,
		partial_data = EXCLUDED.partial_data,
		price = EXCLUDED.price,
		observed_at = EXCLUDED.observed_at,
		scored_at = NOW()`

// SaveScores upserts the breakdown rows for one scoring run.
func (s *Sink) SaveScores(ctx context.Context, breakdowns []models.ScoreBreakdown) error {
	for _, b := range breakdowns {
		dims, err := json.Marshal(b.Dimensions)
		if err != nil {
			return apperrors.NewQueryExecutionFailedError("encode dimensions", err)
		}
		_, err = s.db.Exec(ctx, upsertScoreQuery,
			b.ListingID, dims, b.Composite, b.Final, b.Blended,
			b.Affordable, b.PriceUnknown, b.PartialData, b.Price, b.ObservedAt,
		)
		if err != nil {
			return apperrors.NewQueryExecutionFailedError("upsert listing score", err)
		}
	}
	return nil
}

const insertEventQuery = `
	INSERT INTO lifecycle_events (event_id, event_type, listing_id, occurred_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (event_id) DO NOTHING`

// SaveEvents appends lifecycle events to the audit table.
func (s *Sink) SaveEvents(ctx context.Context, events []models.Event) error {
	for _, e := range events {
		if _, err := s.db.Exec(ctx, insertEventQuery, e.ID, string(e.Type), e.ListingID, e.At); err != nil {
			return apperrors.NewQueryExecutionFailedError("insert lifecycle event", err)
		}
	}
	return nil
}
