// internal/pipeline/cycle.go

// Package pipeline drives one scrape-and-score cycle: fetch a snapshot
// batch, reconcile the lifecycle records, fan out events, then valuate and
// score every active listing into a ranked recommendation set.
package pipeline

import (
	"context"
	"errors"
	"time"

	"fretwatch/internal/collection"
	"fretwatch/internal/common/config"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/common/metrics"
	"fretwatch/internal/common/observability"
	"fretwatch/internal/comps"
	"fretwatch/internal/lifecycle"
	"fretwatch/internal/models"
	"fretwatch/internal/predict"
	"fretwatch/internal/scoring"
	"fretwatch/internal/valuation"
)

// CollectionSource loads the owned instruments for profile derivation.
type CollectionSource interface {
	LoadOwned(ctx context.Context) ([]models.OwnedGuitar, error)
}

// HistorySink records resolved market bands for rate learning.
type HistorySink interface {
	Append(ctx context.Context, brand, model string, rng models.PriceRange, observedAt time.Time) error
}

// ScoreSink persists scoring output and event audit rows.
type ScoreSink interface {
	SaveScores(ctx context.Context, breakdowns []models.ScoreBreakdown) error
	SaveEvents(ctx context.Context, events []models.Event) error
}

// Alerter dispatches lifecycle events to the notification channels.
type Alerter interface {
	SeedIfFirstRun(ctx context.Context, records map[string]models.LifecycleRecord) error
	Dispatch(ctx context.Context, events []models.Event, snapshots map[string]models.ListingSnapshot)
}

// CompIndexer records confirmed sales as comparables.
type CompIndexer interface {
	Index(ctx context.Context, comp comps.SoldComp) error
}

// Runner wires one cycle's collaborators together.
type Runner struct {
	cfg        *config.Config
	source     ScrapeSource
	records    lifecycle.RecordStore
	tracker    *lifecycle.Tracker
	valuator   *valuation.Valuator
	engine     *scoring.Engine
	provider   predict.Provider
	collection CollectionSource
	history    HistorySink
	sink       ScoreSink
	alerter    Alerter
	comps      CompIndexer
	snapshots  SnapshotCache
	obs        *observability.Observability
	logger     logger.Logger
}

type RunnerDeps struct {
	Source     ScrapeSource
	Records    lifecycle.RecordStore
	Tracker    *lifecycle.Tracker
	Valuator   *valuation.Valuator
	Engine     *scoring.Engine
	Provider   predict.Provider
	Collection CollectionSource
	History    HistorySink
	Sink       ScoreSink
	Alerter    Alerter
	Comps      CompIndexer
	Snapshots  SnapshotCache
	Obs        *observability.Observability
}

func NewRunner(cfg *config.Config, deps RunnerDeps, log logger.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		source:     deps.Source,
		records:    deps.Records,
		tracker:    deps.Tracker,
		valuator:   deps.Valuator,
		engine:     deps.Engine,
		provider:   deps.Provider,
		collection: deps.Collection,
		history:    deps.History,
		sink:       deps.Sink,
		alerter:    deps.Alerter,
		comps:      deps.Comps,
		snapshots:  deps.Snapshots,
		obs:        deps.Obs,
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run executes one full cycle and returns the ranked recommendations.
// Per-listing data gaps degrade that listing's dimensions; only batch-level
// failures (fetch, record store) fail the cycle.
func (r *Runner) Run(ctx context.Context) ([]models.ScoreBreakdown, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.ScoutCyclesCompleted.WithLabelValues(status).Inc()
		metrics.ScoutCycleDuration.WithLabelValues("feed").Observe(time.Since(start).Seconds())
		if r.obs != nil {
			r.obs.RecordCycleProcessed(ctx, status)
			r.obs.RecordCycleDuration(ctx, time.Since(start), status)
		}
	}()

	batch, err := r.source.Fetch(ctx)
	if err != nil {
		status = "fetch_failed"
		return nil, err
	}

	previous, err := r.records.LoadRecords(ctx)
	if err != nil {
		status = "store_failed"
		return nil, err
	}

	now := time.Now().UTC()
	updated, events, err := r.tracker.Reconcile(batch, previous, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyScrape) {
			// Likely fetch failure upstream; suppress absence transitions
			// and try again next cycle.
			metrics.EmptyScrapesSuppressed.Inc()
			r.logger.Warn("empty scrape, absence transitions suppressed", map[string]interface{}{
				"tracked": len(previous),
			})
			status = "empty_scrape"
			return nil, nil
		}
		status = "reconcile_failed"
		return nil, err
	}

	if err := r.alerter.SeedIfFirstRun(ctx, updated); err != nil {
		r.logger.WithError(err).Warn("notified-set seeding failed", nil)
	}

	if err := r.records.SaveRecords(ctx, updated); err != nil {
		status = "store_failed"
		return nil, err
	}

	for state, count := range lifecycle.CountByState(updated) {
		metrics.TrackedListings.WithLabelValues(string(state)).Set(float64(count))
	}
	for _, e := range events {
		metrics.LifecycleEvents.WithLabelValues(string(e.Type)).Inc()
	}

	byID := make(map[string]models.ListingSnapshot, len(batch))
	for _, snap := range batch {
		byID[snap.ID] = snap
	}

	if err := r.snapshots.Put(ctx, batch); err != nil {
		r.logger.WithError(err).Warn("snapshot cache update failed", nil)
	}

	r.alerter.Dispatch(ctx, events, byID)

	if err := r.sink.SaveEvents(ctx, events); err != nil {
		r.logger.WithError(err).Warn("event audit write failed", nil)
	}

	r.indexSoldComps(ctx, events)

	profile := r.loadProfile(ctx)

	breakdowns := r.scoreActive(ctx, batch, updated, profile)

	ranked := scoring.Rank(breakdowns, r.cfg.Budget.TopN)

	if err := r.sink.SaveScores(ctx, breakdowns); err != nil {
		r.logger.WithError(err).Warn("score persistence failed", nil)
	}

	r.logger.Info("cycle complete", map[string]interface{}{
		"listings": len(batch),
		"events":   len(events),
		"scored":   len(breakdowns),
		"ranked":   len(ranked),
		"duration": time.Since(start).String(),
	})
	return ranked, nil
}

func (r *Runner) loadProfile(ctx context.Context) *collection.Profile {
	if r.collection == nil {
		return nil
	}
	owned, err := r.collection.LoadOwned(ctx)
	if err != nil {
		// Fit degrades to neutral rather than failing the cycle.
		r.logger.WithError(err).Warn("owned collection unavailable, fit scoring neutral", nil)
		return nil
	}
	return collection.NewProfile(owned)
}

func (r *Runner) scoreActive(
	ctx context.Context,
	batch []models.ListingSnapshot,
	records map[string]models.LifecycleRecord,
	profile *collection.Profile,
) []models.ScoreBreakdown {
	var breakdowns []models.ScoreBreakdown
	for _, snap := range batch {
		if rec, ok := records[snap.ID]; !ok || rec.State != models.StateActive {
			continue
		}

		val := r.valuator.Valuate(ctx, snap.Brand, snap.Model, snap.Year)

		if r.history != nil {
			if err := r.history.Append(ctx, snap.Brand, snap.Model, val.Range, snap.ObservedAt); err != nil {
				r.logger.WithError(err).Warn("price history append failed", map[string]interface{}{
					"listingId": snap.ID,
				})
			}
		}

		var secondary *float64
		if r.provider != nil {
			s, err := r.provider.Predict(snap, val, profile)
			if err != nil {
				r.logger.WithError(err).Warn("secondary prediction failed, using composite", map[string]interface{}{
					"listingId": snap.ID,
				})
			} else {
				secondary = s
			}
		}

		breakdown := r.engine.Score(snap, val, profile, secondary)
		breakdowns = append(breakdowns, breakdown)

		completeness := "complete"
		if breakdown.PartialData {
			completeness = "partial"
		}
		metrics.ListingsScored.WithLabelValues(completeness).Inc()
	}
	return breakdowns
}

func (r *Runner) indexSoldComps(ctx context.Context, events []models.Event) {
	if r.comps == nil || r.snapshots == nil {
		return
	}
	for _, event := range events {
		if event.Type != models.EventConfirmedSold {
			continue
		}
		snap, found, err := r.snapshots.Get(ctx, event.ListingID)
		if err != nil || !found {
			r.logger.Warn("no cached snapshot for sold listing, comp skipped", map[string]interface{}{
				"listingId": event.ListingID,
			})
			continue
		}
		if err := r.comps.Index(ctx, comps.FromSnapshot(snap, event.At)); err != nil {
			r.logger.WithError(err).Warn("sold comp indexing failed", map[string]interface{}{
				"listingId": event.ListingID,
			})
		}
	}
}
