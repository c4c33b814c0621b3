// internal/pipeline/snapshots.go
package pipeline

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

// SnapshotCache keeps the last observed snapshot per listing. A confirmed
// sale is by definition absent from the current batch, so the comp indexer
// reads the listing's final state from here.
type SnapshotCache interface {
	Put(ctx context.Context, snapshots []models.ListingSnapshot) error
	Get(ctx context.Context, listingID string) (models.ListingSnapshot, bool, error)
}

const snapshotHashKey = "fretwatch:snapshots:last"

// RedisSnapshotCache stores last-seen snapshots in one Redis hash.
type RedisSnapshotCache struct {
	client *database.RedisClient
}

func NewRedisSnapshotCache(client *database.RedisClient) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

func (c *RedisSnapshotCache) Put(ctx context.Context, snapshots []models.ListingSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(snapshots))
	for _, snap := range snapshots {
		raw, err := json.Marshal(snap)
		if err != nil {
			return apperrors.NewQueryExecutionFailedError("encode snapshot", err)
		}
		fields[snap.ID] = string(raw)
	}
	if err := c.client.Client.HSet(ctx, snapshotHashKey, fields).Err(); err != nil {
		return apperrors.NewQueryExecutionFailedError("cache snapshots", err)
	}
	return nil
}

func (c *RedisSnapshotCache) Get(ctx context.Context, listingID string) (models.ListingSnapshot, bool, error) {
	raw, err := c.client.Client.HGet(ctx, snapshotHashKey, listingID).Result()
	if err == redis.Nil {
		return models.ListingSnapshot{}, false, nil
	}
	if err != nil {
		return models.ListingSnapshot{}, false, apperrors.NewQueryExecutionFailedError("read cached snapshot", err)
	}

	var snap models.ListingSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.ListingSnapshot{}, false, apperrors.NewQueryExecutionFailedError("decode cached snapshot", err)
	}
	return snap, true, nil
}
