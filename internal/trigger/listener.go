package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const reconnectDelay = 5 * time.Second

// Listener consumes Postgres NOTIFY payloads published by the verification
// triggers (sql/auto_matching_triggers.sql) and feeds them to the
// dispatcher. It holds one pooled connection and reconnects on failure.
type Listener struct {
	logger     *logrus.Logger
	pool       *pgxpool.Pool
	channel    string
	dispatcher *Dispatcher
}

func NewListener(logger *logrus.Logger, pool *pgxpool.Pool, channel string, dispatcher *Dispatcher) *Listener {
	return &Listener{
		logger:     logger,
		pool:       pool,
		channel:    channel,
		dispatcher: dispatcher,
	}
}

func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.logger.WithError(err).Error("verification listener disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}

	l.logger.WithField("channel", l.channel).Info("listening for profile verifications")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			l.logger.WithError(err).WithField("payload", notification.Payload).Warn("ignoring malformed verification payload")
			continue
		}

		if (event.Kind != KindDonor && event.Kind != KindRecipient) || event.ProfileID == "" {
			l.logger.WithField("payload", notification.Payload).Warn("ignoring incomplete verification payload")
			continue
		}

		if err := l.dispatcher.Enqueue(ctx, event); err != nil {
			return err
		}
	}
}
