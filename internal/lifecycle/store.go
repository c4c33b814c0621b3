// internal/lifecycle/store.go
package lifecycle

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

// RecordStore persists the lifecycle record map between cycles. The scout
// runs a single-writer discipline: each cycle loads the full map, folds one
// snapshot batch into it, and saves the result before the next cycle.
type RecordStore interface {
	LoadRecords(ctx context.Context) (map[string]models.LifecycleRecord, error)
	SaveRecords(ctx context.Context, records map[string]models.LifecycleRecord) error
}

const recordsKey = "fretwatch:lifecycle:records"

// RedisRecordStore keeps the record map as one JSON document in Redis, so
// the per-cycle read-modify-write stays a single GET/SET pair.
type RedisRecordStore struct {
	client *database.RedisClient
}

func NewRedisRecordStore(client *database.RedisClient) *RedisRecordStore {
	return &RedisRecordStore{client: client}
}

func (s *RedisRecordStore) LoadRecords(ctx context.Context) (map[string]models.LifecycleRecord, error) {
	raw, err := s.client.Get(ctx, recordsKey)
	if err == redis.Nil {
		return map[string]models.LifecycleRecord{}, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("load lifecycle records", err)
	}

	var records map[string]models.LifecycleRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("decode lifecycle records", err)
	}
	return records, nil
}

func (s *RedisRecordStore) SaveRecords(ctx context.Context, records map[string]models.LifecycleRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("encode lifecycle records", err)
	}
	if err := s.client.Set(ctx, recordsKey, string(raw), 0); err != nil {
		return apperrors.NewQueryExecutionFailedError("save lifecycle records", err)
	}
	return nil
}

// MemoryRecordStore is an in-process store for tests and dry runs.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string]models.LifecycleRecord
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: map[string]models.LifecycleRecord{}}
}

func (s *MemoryRecordStore) LoadRecords(ctx context.Context) (map[string]models.LifecycleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.LifecycleRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.Clone()
	}
	return out, nil
}

func (s *MemoryRecordStore) SaveRecords(ctx context.Context, records map[string]models.LifecycleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]models.LifecycleRecord, len(records))
	for id, rec := range records {
		s.records[id] = rec.Clone()
	}
	return nil
}
