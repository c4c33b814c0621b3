// internal/comps/store.go

// Package comps stores sold comparables in Elasticsearch. Confirmed sales
// land here with their last observed listing data; the training tool reads
// them back as labeled examples.
package comps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fretwatch/internal/common/database"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/models"
)

var (
	ErrIndexFailed  = errors.New("SOLD_COMP_INDEX_FAILED")
	ErrSearchFailed = errors.New("SOLD_COMP_SEARCH_FAILED")
)

// SoldComp is one confirmed sale with the listing data last observed
// before it disappeared.
type SoldComp struct {
	ListingID  string    `json:"listingId"`
	Brand      string    `json:"brand"`
	Model      string    `json:"model"`
	Type       string    `json:"type"`
	Year       *int      `json:"year,omitempty"`
	Condition  string    `json:"condition"`
	Price      *float64  `json:"price,omitempty"`
	SourceSite string    `json:"sourceSite"`
	SoldAt     time.Time `json:"soldAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// FromSnapshot builds a comp from the last snapshot observed for a
// listing confirmed sold at soldAt.
func FromSnapshot(snap models.ListingSnapshot, soldAt time.Time) SoldComp {
	return SoldComp{
		ListingID:  snap.ID,
		Brand:      snap.Brand,
		Model:      snap.Model,
		Type:       string(snap.Type),
		Year:       snap.Year,
		Condition:  string(snap.Condition),
		Price:      snap.Price,
		SourceSite: snap.SourceSite,
		SoldAt:     soldAt,
		LastSeenAt: snap.ObservedAt,
	}
}

// Store indexes and searches sold comps.
type Store struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewStore(es *database.ElasticsearchClient, index string, log logger.Logger) *Store {
	return &Store{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "comps-store"}),
	}
}

// Index writes one comp, keyed by listing id so re-delivered sold events
// stay idempotent.
func (s *Store) Index(ctx context.Context, comp SoldComp) error {
	body, err := json.Marshal(comp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}

	res, err := s.es.Client.Index(
		s.index,
		bytes.NewReader(body),
		s.es.Client.Index.WithContext(ctx),
		s.es.Client.Index.WithDocumentID(comp.ListingID),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}

	s.logger.Debug("sold comp indexed", map[string]interface{}{
		"listingId": comp.ListingID,
		"brand":     comp.Brand,
		"model":     comp.Model,
	})
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source SoldComp `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns comps matching a brand/model pair, newest first, up to
// size entries. Empty brand and model returns the newest comps overall.
func (s *Store) Search(ctx context.Context, brand, model string, size int) ([]SoldComp, error) {
	must := []map[string]interface{}{}
	if brand != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"brand": brand}})
	}
	if model != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"model": model}})
	}

	query := map[string]interface{}{
		"size": size,
		"sort": []map[string]interface{}{{"soldAt": map[string]interface{}{"order": "desc"}}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(s.index),
		s.es.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	comps := make([]SoldComp, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		comps = append(comps, hit.Source)
	}
	return comps, nil
}
