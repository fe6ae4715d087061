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

const userTableName = "jeevan.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewUserRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *UserRepository {
	return &UserRepository{pool: pool, queryTimeout: queryTimeout}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &user, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = utils.NanoID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert user query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to create user")
}

func (r *UserRepository) DeleteUsersByIDs(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := psql().
		Delete(userTableName).
		Where(sq.Eq{"id": userIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete users query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to delete users")
}
