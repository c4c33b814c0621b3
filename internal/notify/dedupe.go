// internal/notify/dedupe.go
package notify

import (
	"context"
	"fmt"

	"fretwatch/internal/common/database"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/models"
)

// RedisDedupeStore keeps one notified-ID set per event type, plus a marker
// key so an empty marketplace still counts as seeded.
type RedisDedupeStore struct {
	client *database.RedisClient
}

func NewRedisDedupeStore(client *database.RedisClient) *RedisDedupeStore {
	return &RedisDedupeStore{client: client}
}

func notifiedKey(eventType models.EventType) string {
	return fmt.Sprintf("fretwatch:notified:%s", eventType)
}

func seededKey(eventType models.EventType) string {
	return fmt.Sprintf("fretwatch:notified:%s:seeded", eventType)
}

func (s *RedisDedupeStore) Seeded(ctx context.Context, eventType models.EventType) (bool, error) {
	n, err := s.client.Client.Exists(ctx, seededKey(eventType)).Result()
	if err != nil {
		return false, apperrors.NewQueryExecutionFailedError("check notified seed", err)
	}
	return n > 0, nil
}

func (s *RedisDedupeStore) Notified(ctx context.Context, eventType models.EventType, listingID string) (bool, error) {
	member, err := s.client.Client.SIsMember(ctx, notifiedKey(eventType), listingID).Result()
	if err != nil {
		return false, apperrors.NewQueryExecutionFailedError("check notified id", err)
	}
	return member, nil
}

func (s *RedisDedupeStore) MarkNotified(ctx context.Context, eventType models.EventType, listingIDs ...string) error {
	if len(listingIDs) > 0 {
		members := make([]interface{}, len(listingIDs))
		for i, id := range listingIDs {
			members[i] = id
		}
		if err := s.client.Client.SAdd(ctx, notifiedKey(eventType), members...).Err(); err != nil {
			return apperrors.NewQueryExecutionFailedError("mark notified ids", err)
		}
	}
	if err := s.client.Client.Set(ctx, seededKey(eventType), "1", 0).Err(); err != nil {
		return apperrors.NewQueryExecutionFailedError("mark notified seed", err)
	}
	return nil
}
