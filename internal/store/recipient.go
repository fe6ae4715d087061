package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jeevan/internal/utils"
	"jeevan/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recipientTableName = "jeevan.recipient_profiles"

var recipientColumns = utils.StructTagValues(types.RecipientProfile{})

type RecipientRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewRecipientRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *RecipientRepository {
	return &RecipientRepository{pool: pool, queryTimeout: queryTimeout}
}

func (r *RecipientRepository) Recipient(ctx context.Context, recipientID string) (*types.RecipientProfile, error) {
	query, args, err := psql().
		Select(recipientColumns...).
		From(recipientTableName).
		Where(sq.Eq{"id": recipientID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipient query: %w", err)
	}

	var recipient types.RecipientProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &recipient, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to fetch recipient: %w", err)
	}

	return &recipient, nil
}

// VerifiedRecipients loads verified recipient profiles, oldest first. A
// non-empty recipientID narrows the load to that single profile.
func (r *RecipientRepository) VerifiedRecipients(ctx context.Context, recipientID string) ([]*types.RecipientProfile, error) {
	builder := psql().
		Select(recipientColumns...).
		From(recipientTableName).
		Where(sq.Eq{"status": types.ProfileStatusVerified}).
		OrderBy("created_at ASC", "id ASC")

	if recipientID != "" {
		builder = builder.Where(sq.Eq{"id": recipientID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verified recipients query: %w", err)
	}

	var recipients []*types.RecipientProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		recipients = recipients[:0]
		return pgxscan.Select(ctx, r.pool, &recipients, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verified recipients: %w", err)
	}

	return recipients, nil
}

func (r *RecipientRepository) CreateRecipient(ctx context.Context, recipient *types.RecipientProfile) error {
	now := time.Now()
	if recipient.ID == "" {
		recipient.ID = utils.NanoID()
	}
	if recipient.CreatedAt.IsZero() {
		recipient.CreatedAt = now
	}
	recipient.UpdatedAt = now

	query, args, err := psql().
		Insert(recipientTableName).
		SetMap(utils.StructToMap(recipient)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert recipient query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to create recipient")
}

func (r *RecipientRepository) VerifyRecipient(ctx context.Context, recipientID string) (*types.RecipientProfile, error) {
	now := time.Now()

	query, args, err := psql().
		Update(recipientTableName).
		Set("status", types.ProfileStatusVerified).
		Set("verified_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": recipientID, "status": types.ProfileStatusPending}).
		Suffix("RETURNING " + strings.Join(recipientColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verify recipient query: %w", err)
	}

	var recipient types.RecipientProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &recipient, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Recipient(ctx, recipientID); lookupErr == nil {
				return nil, types.ErrNotPending
			}
			return nil, types.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to verify recipient: %w", err)
	}

	return &recipient, nil
}

func (r *RecipientRepository) MarkRecipientMatched(ctx context.Context, recipientID string) error {
	query, args, err := psql().
		Update(recipientTableName).
		Set("status", types.ProfileStatusMatched).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": recipientID, "status": types.ProfileStatusVerified}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark recipient matched query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to mark recipient matched")
}

func (r *RecipientRepository) DeleteRecipientsByUserIDs(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := psql().
		Delete(recipientTableName).
		Where(sq.Eq{"user_id": userIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete recipients query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to delete recipients")
}
