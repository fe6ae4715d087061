package notify

import (
	"context"
	"fmt"
	"time"

	"jeevan/internal/metrics"
	"jeevan/pkg/types"

	"github.com/sirupsen/logrus"
)

// NotificationStore is the slice of the store the notifier writes through.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *types.Notification) error
}

type pendingNotification struct {
	notification *types.Notification
	attempts     int
}

// Notifier emits one notification row per side of every newly written
// match. Delivery is best effort: a failed insert is logged and parked for
// the retry worker, and never fails the matching pass that produced it.
type Notifier struct {
	logger      *logrus.Logger
	store       NotificationStore
	metrics     *metrics.Metrics
	retry       chan pendingNotification
	maxAttempts int
	retryDelay  time.Duration
}

func New(logger *logrus.Logger, store NotificationStore, m *metrics.Metrics, maxAttempts int, retryDelay time.Duration) *Notifier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Notifier{
		logger:      logger,
		store:       store,
		metrics:     m,
		retry:       make(chan pendingNotification, 256),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// MatchUpserted implements matching.MatchObserver.
func (n *Notifier) MatchUpserted(ctx context.Context, match *types.Match, donor *types.DonorProfile, recipient *types.RecipientProfile) {
	for _, notification := range buildMatchNotifications(match, donor, recipient) {
		n.deliver(ctx, notification, 1)
	}
}

func (n *Notifier) deliver(ctx context.Context, notification *types.Notification, attempt int) {
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		n.metrics.IncrementNotification("failed")
		n.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": notification.UserID,
			"type":    notification.Type,
			"attempt": attempt,
		}).Warn("failed to create notification")

		n.park(notification, attempt)
		return
	}

	n.metrics.IncrementNotification("sent")
}

func (n *Notifier) park(notification *types.Notification, attempt int) {
	if attempt >= n.maxAttempts {
		n.metrics.IncrementNotification("dropped")
		n.logger.WithFields(logrus.Fields{
			"user_id": notification.UserID,
			"type":    notification.Type,
		}).Error("notification dropped after max attempts")
		return
	}

	select {
	case n.retry <- pendingNotification{notification: notification, attempts: attempt}:
	default:
		n.metrics.IncrementNotification("dropped")
		n.logger.WithField("user_id", notification.UserID).Error("notification retry queue full, dropping")
	}
}

// Run is the retry sweep. It re-attempts parked notifications after a
// delay, independently of any matching pass.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pending := <-n.retry:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.retryDelay):
			}

			n.metrics.IncrementNotification("retried")
			n.deliver(ctx, pending.notification, pending.attempts+1)
		}
	}
}

func buildMatchNotifications(match *types.Match, donor *types.DonorProfile, recipient *types.RecipientProfile) []*types.Notification {
	return []*types.Notification{
		{
			UserID: recipient.UserID,
			Type:   types.NotificationTypeMatchFound,
			Title:  "New match found",
			Message: fmt.Sprintf("A compatible %s donor in %s has been matched to your profile (score %.1f). Your care team will review the match.",
				donor.OrganType, donor.City, match.TotalScore),
		},
		{
			UserID: donor.UserID,
			Type:   types.NotificationTypeMatchFound,
			Title:  "New match found",
			Message: fmt.Sprintf("Your %s donation offer has been matched to a recipient in %s (score %.1f). Your care team will review the match.",
				donor.OrganType, recipient.City, match.TotalScore),
		},
	}
}
