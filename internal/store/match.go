package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jeevan/internal/matching"
	"jeevan/internal/utils"
	"jeevan/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchTableName = "jeevan.matches"

var matchColumns = utils.StructTagValues(types.Match{})

type MatchRepository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewMatchRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *MatchRepository {
	return &MatchRepository{pool: pool, queryTimeout: queryTimeout}
}

// upsertCandidateQuery is the whole idempotency contract in one statement:
// the unique (recipient_id, donor_id) index makes concurrent passes
// converge on one row, status defaults to pending on insert only, and the
// DO UPDATE predicate refuses rows a human has decided and rows whose
// scores are already identical. No row comes back when nothing was written.
const upsertCandidateQuery = `
	INSERT INTO jeevan.matches (
		id, recipient_id, donor_id,
		urgency_score, location_score, wait_time_score, age_gap_score, total_score,
		status, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', now(), now())
	ON CONFLICT (recipient_id, donor_id) DO UPDATE SET
		urgency_score = EXCLUDED.urgency_score,
		location_score = EXCLUDED.location_score,
		wait_time_score = EXCLUDED.wait_time_score,
		age_gap_score = EXCLUDED.age_gap_score,
		total_score = EXCLUDED.total_score,
		updated_at = now()
	WHERE matches.status = 'pending'
	  AND (matches.urgency_score, matches.location_score, matches.wait_time_score,
	       matches.age_gap_score, matches.total_score)
	      IS DISTINCT FROM
	      (EXCLUDED.urgency_score, EXCLUDED.location_score, EXCLUDED.wait_time_score,
	       EXCLUDED.age_gap_score, EXCLUDED.total_score)
	RETURNING id, status, created_at, updated_at, (xmax = 0) AS inserted`

type upsertRow struct {
	ID        string            `db:"id"`
	Status    types.MatchStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
	UpdatedAt time.Time         `db:"updated_at"`
	Inserted  bool              `db:"inserted"`
}

// UpsertCandidate implements matching.CandidateSink.
func (r *MatchRepository) UpsertCandidate(ctx context.Context, match *types.Match) (matching.WriteOutcome, error) {
	newID := utils.NanoID()

	var row upsertRow
	err := runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &row, upsertCandidateQuery,
			newID, match.RecipientID, match.DonorID,
			match.UrgencyScore, match.LocationScore, match.WaitTimeScore,
			match.AgeGapScore, match.TotalScore,
		)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			// Conflict with a decided or identical row. Surface the stored
			// row so the caller's report reflects what actually persists.
			existing, lookupErr := r.MatchByPair(ctx, match.RecipientID, match.DonorID)
			if lookupErr == nil {
				*match = *existing
			}
			return matching.WriteUnchanged, nil
		}
		return matching.WriteUnchanged, fmt.Errorf("failed to upsert match candidate: %w", err)
	}

	match.ID = row.ID
	match.Status = row.Status
	match.CreatedAt = row.CreatedAt
	match.UpdatedAt = row.UpdatedAt

	if row.Inserted {
		return matching.WriteInserted, nil
	}
	return matching.WriteUpdated, nil
}

func (r *MatchRepository) Match(ctx context.Context, matchID string) (*types.Match, error) {
	query, args, err := psql().
		Select(matchColumns...).
		From(matchTableName).
		Where(sq.Eq{"id": matchID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match query: %w", err)
	}

	var match types.Match
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &match, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}

	return &match, nil
}

func (r *MatchRepository) MatchByPair(ctx context.Context, recipientID, donorID string) (*types.Match, error) {
	query, args, err := psql().
		Select(matchColumns...).
		From(matchTableName).
		Where(sq.Eq{"recipient_id": recipientID, "donor_id": donorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match pair query: %w", err)
	}

	var match types.Match
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &match, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to fetch match by pair: %w", err)
	}

	return &match, nil
}

// Matches lists match candidates ranked by score. Either filter may be
// blank; both blank lists everything.
func (r *MatchRepository) Matches(ctx context.Context, recipientID, donorID string) ([]*types.Match, error) {
	builder := psql().
		Select(matchColumns...).
		From(matchTableName).
		OrderBy("total_score DESC", "created_at ASC", "id ASC")

	if recipientID != "" {
		builder = builder.Where(sq.Eq{"recipient_id": recipientID})
	}
	if donorID != "" {
		builder = builder.Where(sq.Eq{"donor_id": donorID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate matches query: %w", err)
	}

	var matches []*types.Match
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		matches = matches[:0]
		return pgxscan.Select(ctx, r.pool, &matches, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	return matches, nil
}

// MatchesForUser lists candidates touching any profile owned by the user,
// on either side of the pair.
func (r *MatchRepository) MatchesForUser(ctx context.Context, userID string) ([]*types.Match, error) {
	query, args, err := psql().
		Select(matchColumns...).
		From(matchTableName).
		Where(sq.Or{
			sq.Expr("recipient_id IN (SELECT id FROM jeevan.recipient_profiles WHERE user_id = ?)", userID),
			sq.Expr("donor_id IN (SELECT id FROM jeevan.donor_profiles WHERE user_id = ?)", userID),
		}).
		OrderBy("total_score DESC", "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user matches query: %w", err)
	}

	var matches []*types.Match
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		matches = matches[:0]
		return pgxscan.Select(ctx, r.pool, &matches, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user matches: %w", err)
	}

	return matches, nil
}

// DecideMatch advances a pending candidate to approved or rejected. The
// decision is permanent: a non-pending row is never rewritten.
func (r *MatchRepository) DecideMatch(ctx context.Context, matchID string, status types.MatchStatus) (*types.Match, error) {
	if status != types.MatchStatusApproved && status != types.MatchStatusRejected {
		return nil, fmt.Errorf("invalid match decision %q", status)
	}

	query, args, err := psql().
		Update(matchTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": matchID, "status": types.MatchStatusPending}).
		Suffix("RETURNING " + strings.Join(matchColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate decide match query: %w", err)
	}

	var match types.Match
	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.pool, &match, query, args...)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Match(ctx, matchID); lookupErr == nil {
				return nil, types.ErrNotPending
			}
			return nil, types.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to decide match: %w", err)
	}

	return &match, nil
}

// DeleteMatchesByUserIDs removes candidates touching profiles owned by the
// given users. Admin/test teardown only.
func (r *MatchRepository) DeleteMatchesByUserIDs(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := psql().
		Delete(matchTableName).
		Where(sq.Or{
			sq.Expr("recipient_id IN (SELECT id FROM jeevan.recipient_profiles WHERE user_id = ANY(?))", userIDs),
			sq.Expr("donor_id IN (SELECT id FROM jeevan.donor_profiles WHERE user_id = ANY(?))", userIDs),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete matches query: %w", err)
	}

	err = runWithRetry(ctx, r.queryTimeout, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx, query, args...)
		return execErr
	})

	return utils.ErrorWrapOrNil(err, "failed to delete matches")
}
