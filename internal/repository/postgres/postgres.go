package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgExecutor abstracts pgxpool.Pool and pgx.Tx for repository queries.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolationCode is the postgres error code for unique constraint violations.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether the error is a unique constraint
// violation. The unique index is the backstop for the accepted
// check-then-insert race on email uniqueness across identity stores.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
