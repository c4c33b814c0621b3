// internal/lifecycle/store_test.go
package lifecycle

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fretwatch/internal/common/database"
	"fretwatch/internal/models"
)

func sampleRecords() map[string]models.LifecycleRecord {
	return map[string]models.LifecycleRecord{
		"g-1": {ID: "g-1", State: models.StateActive, LastSeenAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		"g-2": {ID: "g-2", State: models.StateSoldCandidate, LastSeenAt: time.Date(2025, 6, 1, 11, 55, 0, 0, time.UTC)},
	}
}

func TestRedisRecordStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisRecordStore(&database.RedisClient{Client: client})
	ctx := context.Background()

	// Cold start: no key yet means an empty map, not an error.
	records, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	want := sampleRecords()
	require.NoError(t, store.SaveRecords(ctx, want))

	got, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, want["g-1"].State, got["g-1"].State)
	assert.Equal(t, want["g-2"].State, got["g-2"].State)
	assert.True(t, want["g-1"].LastSeenAt.Equal(got["g-1"].LastSeenAt))
}

func TestRedisRecordStore_LoadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(recordsKey).SetErr(assert.AnError)

	store := NewRedisRecordStore(&database.RedisClient{Client: client})
	_, err := store.LoadRecords(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRecordStore_CorruptPayload(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(recordsKey).SetVal("not json")

	store := NewRedisRecordStore(&database.RedisClient{Client: client})
	_, err := store.LoadRecords(context.Background())
	assert.Error(t, err)
}

func TestRedisRecordStore_SavePayload(t *testing.T) {
	records := sampleRecords()
	raw, err := json.Marshal(records)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectSet(recordsKey, string(raw), 0).SetVal("OK")

	store := NewRedisRecordStore(&database.RedisClient{Client: client})
	require.NoError(t, store.SaveRecords(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRecordStore_Isolation(t *testing.T) {
	store := NewMemoryRecordStore()
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, sampleRecords()))

	first, err := store.LoadRecords(ctx)
	require.NoError(t, err)

	// Mutating a loaded copy must not leak back into the store.
	rec := first["g-1"]
	rec.State = models.StateSold
	first["g-1"] = rec

	second, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, second["g-1"].State)
}
