package store

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// runWithRetry gives op a bounded deadline and one retry on transient
// failure. A cancelled parent context is never retried.
func runWithRetry(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	err := runOnce(ctx, timeout, op)
	if err == nil || ctx.Err() != nil || !isTransient(err) {
		return err
	}

	return runOnce(ctx, timeout, op)
}

func runOnce(ctx context.Context, timeout time.Duration, op func(ctx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(opCtx)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 40: serialization/deadlock,
		// 57: operator intervention (shutdown, cancel)
		for _, class := range []string{"08", "40", "57"} {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		return false
	}

	return pgconn.SafeToRetry(err)
}
