package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", errors.Join(errors.New("query"), context.DeadlineExceeded), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isTransient(tc.err))
		})
	}
}

func TestRunWithRetryRetriesTransientOnce(t *testing.T) {
	attempts := 0
	err := runWithRetry(context.Background(), time.Second, func(context.Context) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRunWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	attempts := 0
	transient := &pgconn.PgError{Code: "08006"}
	err := runWithRetry(context.Background(), time.Second, func(context.Context) error {
		attempts++
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRunWithRetryDoesNotRetryPermanentErrors(t *testing.T) {
	attempts := 0
	err := runWithRetry(context.Background(), time.Second, func(context.Context) error {
		attempts++
		return &pgconn.PgError{Code: "23505"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRunWithRetryRespectsCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := runWithRetry(ctx, time.Second, func(context.Context) error {
		attempts++
		cancel()
		return context.DeadlineExceeded
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRunWithRetryAppliesTimeout(t *testing.T) {
	err := runWithRetry(context.Background(), 10*time.Millisecond, func(opCtx context.Context) error {
		deadline, ok := opCtx.Deadline()
		if !ok {
			return errors.New("no deadline set")
		}
		if time.Until(deadline) > 10*time.Millisecond {
			return errors.New("deadline too far out")
		}
		return nil
	})

	require.NoError(t, err)
}
