// internal/notify/notifier_test.go
package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fretwatch/internal/common/config"
	"fretwatch/internal/common/database"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/models"
)

type fakeEmail struct {
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, input)
	return &ses.SendEmailOutput{}, nil
}

type fakeTopic struct {
	published []*sns.PublishInput
	err       error
}

func (f *fakeTopic) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, input)
	return &sns.PublishOutput{}, nil
}

func newTestDedupe(t *testing.T) *RedisDedupeStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDedupeStore(&database.RedisClient{Client: client})
}

func notifyConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.AWS.SES.Enabled = true
	cfg.AWS.SES.FromEmail = "scout@example.com"
	cfg.AWS.SES.Recipient = "me@example.com"
	cfg.AWS.SNS.Enabled = true
	cfg.AWS.SNS.TopicARN = "arn:aws:sns:us-east-1:000000000000:fretwatch"
	return cfg
}

func sampleEvent(id, listingID string, typ models.EventType) models.Event {
	return models.Event{ID: id, Type: typ, ListingID: listingID, At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestDispatch(t *testing.T) {
	email := &fakeEmail{}
	topic := &fakeTopic{}
	n := New(notifyConfig(), email, topic, newTestDedupe(t), logger.NewTestLogger(t))

	year := 1964
	price := 12000.0
	snapshots := map[string]models.ListingSnapshot{
		"g-1": {
			ID: "g-1", Brand: "Gibson", Model: "ES-335", Year: &year, Price: &price,
			URL: "https://example.com/g-1",
		},
	}

	events := []models.Event{sampleEvent("e-1", "g-1", models.EventNewListing)}
	n.Dispatch(context.Background(), events, snapshots)

	require.Len(t, email.sent, 1)
	assert.Contains(t, *email.sent[0].Message.Subject.Data, "Gibson ES-335")
	assert.Contains(t, *email.sent[0].Message.Body.Text.Data, "https://example.com/g-1")
	require.Len(t, topic.published, 1)

	// Redelivery of the same listing/event type is deduplicated.
	n.Dispatch(context.Background(), events, snapshots)
	assert.Len(t, email.sent, 1)
	assert.Len(t, topic.published, 1)
}

func TestDispatch_FailureRetriesNextCycle(t *testing.T) {
	email := &fakeEmail{err: assert.AnError}
	cfg := notifyConfig()
	cfg.AWS.SNS.Enabled = false
	dedupe := newTestDedupe(t)
	n := New(cfg, email, nil, dedupe, logger.NewTestLogger(t))

	events := []models.Event{sampleEvent("e-1", "g-1", models.EventConfirmedSold)}
	n.Dispatch(context.Background(), events, nil)
	assert.Empty(t, email.sent)

	// Send failed, so the id was not marked and the next cycle retries.
	email.err = nil
	n.Dispatch(context.Background(), events, nil)
	assert.Len(t, email.sent, 1)
}

func TestDispatch_PerEventTypeSets(t *testing.T) {
	email := &fakeEmail{}
	cfg := notifyConfig()
	cfg.AWS.SNS.Enabled = false
	n := New(cfg, email, nil, newTestDedupe(t), logger.NewTestLogger(t))

	// The same listing may alert once per event type.
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-1", "g-1", models.EventNewListing)}, nil)
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-2", "g-1", models.EventOnHold)}, nil)
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-3", "g-1", models.EventOnHold)}, nil)

	assert.Len(t, email.sent, 2)
}

func TestSeedIfFirstRun(t *testing.T) {
	email := &fakeEmail{}
	cfg := notifyConfig()
	cfg.AWS.SNS.Enabled = false
	dedupe := newTestDedupe(t)
	n := New(cfg, email, nil, dedupe, logger.NewTestLogger(t))

	records := map[string]models.LifecycleRecord{
		"g-1": {ID: "g-1", State: models.StateActive},
		"g-2": {ID: "g-2", State: models.StateActive},
	}
	require.NoError(t, n.SeedIfFirstRun(context.Background(), records))

	// Backlog listings never alert.
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-1", "g-1", models.EventNewListing)}, nil)
	assert.Empty(t, email.sent)

	// A listing first seen after seeding still alerts.
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-2", "g-9", models.EventNewListing)}, nil)
	assert.Len(t, email.sent, 1)

	// Second seed call is a no-op; g-9 stays marked.
	require.NoError(t, n.SeedIfFirstRun(context.Background(), map[string]models.LifecycleRecord{}))
	n.Dispatch(context.Background(), []models.Event{sampleEvent("e-3", "g-9", models.EventNewListing)}, nil)
	assert.Len(t, email.sent, 1)
}

func TestSeedIfFirstRun_EmptyRecords(t *testing.T) {
	dedupe := newTestDedupe(t)
	n := New(notifyConfig(), &fakeEmail{}, &fakeTopic{}, dedupe, logger.NewTestLogger(t))

	require.NoError(t, n.SeedIfFirstRun(context.Background(), nil))

	seeded, err := dedupe.Seeded(context.Background(), models.EventNewListing)
	require.NoError(t, err)
	assert.True(t, seeded)
}
