package services

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"planify/models"
)

// Publisher pushes realtime messages to a user channel. Delivery is best
// effort; the core never waits on it.
type Publisher interface {
	Publish(channel string, message map[string]any)
}

// PubNubPublisher adapts the PubNub client to the Publisher interface.
type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(channel string, message map[string]any) {
	p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
}

// NotificationService records notifications and mirrors them to the user's
// realtime channel. Failures are logged, never surfaced: notification
// delivery must not affect settlement outcomes.
type NotificationService struct {
	ledger Ledger
	pub    Publisher
}

func NewNotificationService(ledger Ledger, pub Publisher) *NotificationService {
	return &NotificationService{
		ledger: ledger,
		pub:    pub,
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID, typ, message string) {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
	}

	if err := s.ledger.SaveNotification(ctx, n); err != nil {
		slog.Error("failed to save notification", "user_id", userID, "type", typ, "error", err)
	}

	if s.pub != nil {
		s.pub.Publish(fmt.Sprintf("user-%s", userID), map[string]any{
			"type":    typ,
			"message": message,
		})
	}
}
