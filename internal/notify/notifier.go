// internal/notify/notifier.go

// Package notify delivers lifecycle events over SES email and SNS. A
// per-event-type notified-ID set in Redis keeps redelivered events from
// alerting twice; the first run seeds those sets instead of blasting an
// alert for everything already tracked.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"fretwatch/internal/common/config"
	apperrors "fretwatch/internal/common/errors"
	"fretwatch/internal/common/logger"
	"fretwatch/internal/common/metrics"
	"fretwatch/internal/models"
)

// EmailSender is the SES surface the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is the SNS surface the notifier needs.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// DedupeStore tracks which listing IDs have already been alerted, one set
// per event type.
type DedupeStore interface {
	// Seeded reports whether the set for this event type exists at all.
	Seeded(ctx context.Context, eventType models.EventType) (bool, error)
	// Notified reports whether this listing was already alerted.
	Notified(ctx context.Context, eventType models.EventType, listingID string) (bool, error)
	// MarkNotified records listing IDs as alerted.
	MarkNotified(ctx context.Context, eventType models.EventType, listingIDs ...string) error
}

var eventSubjects = map[models.EventType]string{
	models.EventNewListing:    "New guitar listed",
	models.EventOnHold:        "Guitar placed on hold",
	models.EventResurrected:   "Guitar back on the market",
	models.EventConfirmedSold: "Guitar sold",
}

// Notifier fans lifecycle events out to the enabled channels.
type Notifier struct {
	cfg    config.NotificationConfig
	email  EmailSender
	topic  TopicPublisher
	dedupe DedupeStore
	logger logger.Logger
}

func New(cfg config.NotificationConfig, email EmailSender, topic TopicPublisher, dedupe DedupeStore, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		email:  email,
		topic:  topic,
		dedupe: dedupe,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// SeedIfFirstRun marks every currently-tracked listing as already notified
// for any event type whose dedupe set does not exist yet. Without this, the
// first cycle against an established marketplace would alert on the whole
// backlog.
func (n *Notifier) SeedIfFirstRun(ctx context.Context, records map[string]models.LifecycleRecord) error {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}

	for eventType := range eventSubjects {
		seeded, err := n.dedupe.Seeded(ctx, eventType)
		if err != nil {
			return err
		}
		if seeded {
			continue
		}
		n.logger.Info("seeding notified set on first run", map[string]interface{}{
			"eventType": string(eventType),
			"listings":  len(ids),
		})
		if err := n.dedupe.MarkNotified(ctx, eventType, ids...); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch delivers the events that have not been alerted yet. Delivery
// failures are logged and counted but never fail the cycle; the dedupe
// mark is only written after a successful send so the next cycle retries.
func (n *Notifier) Dispatch(ctx context.Context, events []models.Event, snapshots map[string]models.ListingSnapshot) {
	for _, event := range events {
		already, err := n.dedupe.Notified(ctx, event.Type, event.ListingID)
		if err != nil {
			n.logger.WithError(err).Warn("dedupe check failed, skipping notification", map[string]interface{}{
				"listingId": event.ListingID,
			})
			continue
		}
		if already {
			continue
		}

		subject, body := n.render(event, snapshots[event.ListingID])

		delivered := false
		if n.cfg.AWS.SES.Enabled && n.email != nil {
			if err := n.sendEmail(ctx, subject, body); err != nil {
				n.logger.WithError(err).Error("email delivery failed", map[string]interface{}{
					"listingId": event.ListingID,
					"eventType": string(event.Type),
				})
			} else {
				metrics.NotificationsSent.WithLabelValues("ses", string(event.Type)).Inc()
				delivered = true
			}
		}
		if n.cfg.AWS.SNS.Enabled && n.topic != nil {
			if err := n.publish(ctx, subject, body); err != nil {
				n.logger.WithError(err).Error("sns publish failed", map[string]interface{}{
					"listingId": event.ListingID,
					"eventType": string(event.Type),
				})
			} else {
				metrics.NotificationsSent.WithLabelValues("sns", string(event.Type)).Inc()
				delivered = true
			}
		}

		if delivered {
			if err := n.dedupe.MarkNotified(ctx, event.Type, event.ListingID); err != nil {
				n.logger.WithError(err).Warn("failed to mark listing notified", map[string]interface{}{
					"listingId": event.ListingID,
				})
			}
		}
	}
}

func (n *Notifier) render(event models.Event, snap models.ListingSnapshot) (subject, body string) {
	subject = eventSubjects[event.Type]

	var sb strings.Builder
	if snap.Brand != "" {
		fmt.Fprintf(&sb, "%s %s", snap.Brand, snap.Model)
		if snap.Year != nil {
			fmt.Fprintf(&sb, " (%d)", *snap.Year)
		}
		if snap.Price != nil {
			fmt.Fprintf(&sb, " - $%.0f", *snap.Price)
		}
		sb.WriteString("\n")
		if snap.URL != "" {
			sb.WriteString(snap.URL)
			sb.WriteString("\n")
		}
		subject = fmt.Sprintf("%s: %s %s", eventSubjects[event.Type], snap.Brand, snap.Model)
	} else {
		fmt.Fprintf(&sb, "listing %s\n", event.ListingID)
	}
	fmt.Fprintf(&sb, "event: %s at %s", event.Type, event.At.Format("2006-01-02 15:04 MST"))
	return subject, sb.String()
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.AWS.SES.Recipient},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	}
	if _, err := n.email.SendEmail(ctx, input); err != nil {
		return apperrors.NewNotificationSendFailedError("ses", err)
	}
	return nil
}

func (n *Notifier) publish(ctx context.Context, subject, body string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(n.cfg.AWS.SNS.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	}
	if _, err := n.topic.Publish(ctx, input); err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}
