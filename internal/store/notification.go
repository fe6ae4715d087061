package store

import (
	"context"
	"fmt"
	"time"

	"jeevan/internal/utils"
	"jeevan/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationTableName = "jeevan.notifications"

var notificationColumns = utils.StructTagValues(types.Notification{})

type NotificationRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewNotificationRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *NotificationRepository {
	return &NotificationRepository{pool: pool, queryTimeout: queryTimeout}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notification *types.Notification) error {
	if notification.ID == "" {
		notification.ID = utils.NanoID()
	}
	notification.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(notificationTableName).
		SetMap(utils.StructToMap(notification)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert notification query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to create notification")
}

// NotificationsForUser lists a user's notifications, newest first.
func (r *NotificationRepository) NotificationsForUser(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error) {
	builder := psql().
		Select(notificationColumns...).
		From(notificationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id ASC")

	if unreadOnly {
		builder = builder.Where(sq.Eq{"is_read": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	var notifications []*types.Notification
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		notifications = notifications[:0]
		return pgxscan.Select(ctx, r.pool, &notifications, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, notificationID string) error {
	query, args, err := psql().
		Update(notificationTableName).
		Set("is_read", true).
		Where(sq.Eq{"id": notificationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark read query: %w", err)
	}

	var affected int64
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		tag, execErr := r.pool.Exec(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if affected == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepository) DeleteNotificationsByUserIDs(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := psql().
		Delete(notificationTableName).
		Where(sq.Eq{"user_id": userIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete notifications query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to delete notifications")
}
