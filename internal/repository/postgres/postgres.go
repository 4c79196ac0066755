package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	stringTooLong       = "22001"

	defaultListLimit = 50
	maxListLimit     = 200
)

// pgExecutor is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// translateError maps driver errors onto repository sentinels, keeping the
// operation name for context.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, repository.ErrDuplicate)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, repository.ErrInvalidReference)
		case stringTooLong:
			return fmt.Errorf("%s: %w", op, repository.ErrValueTooLong)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func paginate(query squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Limit(uint64(limit))
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}
	return query
}

func countRows(ctx context.Context, exec pgExecutor, query squirrel.SelectBuilder, op string) (int, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s sql: %w", op, err)
	}

	var count int64
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

func affectedOrNotFound(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
