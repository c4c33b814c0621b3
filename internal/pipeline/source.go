// internal/pipeline/source.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/validation"
	"fretwatch/internal/models"
)

// ScrapeSource produces one snapshot batch per cycle. HTML fetching and
// parsing live behind this interface; the pipeline only sees batches.
type ScrapeSource interface {
	Fetch(ctx context.Context) ([]models.ListingSnapshot, error)
}

// rawSnapshot is the lenient wire form of a snapshot before enum
// normalization.
type rawSnapshot struct {
	ID         string    `json:"id"`
	Brand      string    `json:"brand"`
	Model      string    `json:"model"`
	Type       string    `json:"type"`
	Year       *int      `json:"year"`
	Condition  string    `json:"condition"`
	Price      *float64  `json:"price"`
	SourceSite string    `json:"sourceSite"`
	URL        string    `json:"url"`
	ObservedAt time.Time `json:"observedAt"`
	StatusHint string    `json:"statusHint"`
}

// ParseBatch validates a raw JSON feed body and normalizes it into typed
// snapshots. A batch failing schema validation is rejected whole.
func ParseBatch(raw []byte) ([]models.ListingSnapshot, error) {
	if err := validation.ValidateSnapshotBatch(raw); err != nil {
		return nil, err
	}

	var rows []rawSnapshot
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, apperrors.NewSnapshotBatchInvalidError(err.Error())
	}

	snapshots := make([]models.ListingSnapshot, 0, len(rows))
	for _, r := range rows {
		hint := models.StatusActive
		if r.StatusHint == string(models.StatusOnHold) {
			hint = models.StatusOnHold
		}
		snapshots = append(snapshots, models.ListingSnapshot{
			ID:         r.ID,
			Brand:      r.Brand,
			Model:      r.Model,
			Type:       models.ParseGuitarType(r.Type),
			Year:       r.Year,
			Condition:  models.ParseCondition(r.Condition),
			Price:      r.Price,
			SourceSite: r.SourceSite,
			URL:        r.URL,
			ObservedAt: r.ObservedAt,
			StatusHint: hint,
		})
	}

	if err := validation.CheckDuplicateIDs(snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// FeedSource reads snapshot batches from the scraper's JSON feed endpoint.
type FeedSource struct {
	url  string
	http *http.Client
}

func NewFeedSource(url string, timeout time.Duration) *FeedSource {
	return &FeedSource{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (s *FeedSource) Fetch(ctx context.Context) ([]models.ListingSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseBatch(raw)
}
