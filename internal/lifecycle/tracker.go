// internal/lifecycle/tracker.go

// Package lifecycle reconciles successive scrape snapshots into durable
// per-listing state and emits the transitions worth acting on. Absence is
// never taken as proof of sale on its own: a listing must stay missing for
// a full grace period before a sale is confirmed.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/models"
)

// Tracker owns the sold/on-hold state machine. It is a pure transformation
// over immutable inputs; persistence of the record map is the caller's
// concern (one reconciliation pass owns the full read-modify-write before
// the next cycle begins).
type Tracker struct {
	grace  time.Duration
	logger logger.Logger
}

func NewTracker(grace time.Duration, log logger.Logger) *Tracker {
	return &Tracker{
		grace:  grace,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle-tracker"}),
	}
}

// Reconcile folds one snapshot batch into the previous record set and
// returns the updated records plus the events emitted by this pass. The
// input map is never mutated.
//
// An empty batch signals a likely fetch failure rather than an empty
// marketplace: the pass becomes a no-op and ErrEmptyScrape is returned
// alongside the (unchanged) records so the caller can log it as a warning.
func (t *Tracker) Reconcile(
	snapshots []models.ListingSnapshot,
	previous map[string]models.LifecycleRecord,
	now time.Time,
) (map[string]models.LifecycleRecord, []models.Event, error) {
	updated := make(map[string]models.LifecycleRecord, len(previous)+len(snapshots))
	for id, rec := range previous {
		updated[id] = rec.Clone()
	}

	if len(snapshots) == 0 {
		return updated, nil, apperrors.ErrEmptyScrape
	}

	var events []models.Event
	emit := func(typ models.EventType, listingID string) {
		events = append(events, models.Event{
			ID:        uuid.New().String(),
			Type:      typ,
			ListingID: listingID,
			At:        now,
		})
	}

	present := make(map[string]bool, len(snapshots))
	for _, snap := range snapshots {
		present[snap.ID] = true

		rec, tracked := updated[snap.ID]
		if !tracked {
			rec = models.LifecycleRecord{
				ID:         snap.ID,
				State:      models.StateActive,
				LastSeenAt: now,
			}
			emit(models.EventNewListing, snap.ID)
		} else {
			if rec.State == models.StateSold {
				// Sold is terminal. A reappearing id is a new logical
				// listing and must arrive under a fresh id upstream.
				continue
			}
			rec.LastSeenAt = now
			rec.FirstMissingAt = nil
			if rec.State == models.StateSoldCandidate {
				rec.State = models.StateActive
				emit(models.EventResurrected, snap.ID)
			}
		}

		// On-hold observed on a present listing takes precedence over any
		// absence-based transition in the same cycle.
		switch snap.StatusHint {
		case models.StatusOnHold:
			if rec.State != models.StateOnHold {
				rec.State = models.StateOnHold
				emit(models.EventOnHold, snap.ID)
			}
		case models.StatusActive:
			if rec.State == models.StateOnHold {
				rec.State = models.StateActive
			}
		}

		updated[snap.ID] = rec
	}

	for id, rec := range updated {
		if present[id] || rec.State == models.StateSold {
			continue
		}

		if rec.FirstMissingAt == nil {
			missing := now
			rec.FirstMissingAt = &missing
			rec.State = models.StateSoldCandidate
			// No event yet; absence alone is not proof of sale.
		} else if rec.State == models.StateSoldCandidate && now.Sub(*rec.FirstMissingAt) >= t.grace {
			rec.State = models.StateSold
			emit(models.EventConfirmedSold, id)
		}

		updated[id] = rec
	}

	return updated, events, nil
}

// CountByState tallies records per lifecycle state, for gauge reporting.
func CountByState(records map[string]models.LifecycleRecord) map[models.ListingState]int {
	counts := make(map[models.ListingState]int, 4)
	for _, rec := range records {
		counts[rec.State]++
	}
	return counts
}
