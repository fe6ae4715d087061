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

const donorTableName = "jeevan.donor_profiles"

var donorColumns = utils.StructTagValues(types.DonorProfile{})

type DonorRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewDonorRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *DonorRepository {
	return &DonorRepository{pool: pool, queryTimeout: queryTimeout}
}

func (r *DonorRepository) Donor(ctx context.Context, donorID string) (*types.DonorProfile, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"id": donorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor query: %w", err)
	}

	var donor types.DonorProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &donor, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	return &donor, nil
}

// VerifiedDonors loads verified donor profiles, oldest first. A non-empty
// donorID narrows the load to that single profile.
func (r *DonorRepository) VerifiedDonors(ctx context.Context, donorID string) ([]*types.DonorProfile, error) {
	builder := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"status": types.ProfileStatusVerified}).
		OrderBy("created_at ASC", "id ASC")

	if donorID != "" {
		builder = builder.Where(sq.Eq{"id": donorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verified donors query: %w", err)
	}

	var donors []*types.DonorProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		donors = donors[:0]
		return pgxscan.Select(ctx, r.pool, &donors, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verified donors: %w", err)
	}

	return donors, nil
}

func (r *DonorRepository) CreateDonor(ctx context.Context, donor *types.DonorProfile) error {
	now := time.Now()
	if donor.ID == "" {
		donor.ID = utils.NanoID()
	}
	if donor.CreatedAt.IsZero() {
		donor.CreatedAt = now
	}
	donor.UpdatedAt = now

	query, args, err := psql().
		Insert(donorTableName).
		SetMap(utils.StructToMap(donor)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donor query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to create donor")
}

// VerifyDonor moves a pending donor profile to verified and stamps
// verified_at. This transition is the matching trigger input.
func (r *DonorRepository) VerifyDonor(ctx context.Context, donorID string) (*types.DonorProfile, error) {
	now := time.Now()

	query, args, err := psql().
		Update(donorTableName).
		Set("status", types.ProfileStatusVerified).
		Set("verified_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": donorID, "status": types.ProfileStatusPending}).
		Suffix("RETURNING " + strings.Join(donorColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verify donor query: %w", err)
	}

	var donor types.DonorProfile
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &donor, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Donor(ctx, donorID); lookupErr == nil {
				return nil, types.ErrNotPending
			}
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to verify donor: %w", err)
	}

	return &donor, nil
}

// MarkDonorMatched records that a verified donor's offer has been committed
// by an approved match.
func (r *DonorRepository) MarkDonorMatched(ctx context.Context, donorID string) error {
	query, args, err := psql().
		Update(donorTableName).
		Set("status", types.ProfileStatusMatched).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": donorID, "status": types.ProfileStatusVerified}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark donor matched query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to mark donor matched")
}

func (r *DonorRepository) DeleteDonorsByUserIDs(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := psql().
		Delete(donorTableName).
		Where(sq.Eq{"user_id": userIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donors query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to delete donors")
}
