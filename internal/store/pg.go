package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/entity"
)

const (
	uniqueViolation           = "23505"
	checkViolation            = "23514"
	invalidTextRepresentation = "22P02"
	stringDataRightTruncation = "22001"
	numericValueOutOfRange    = "22003"
)

type pgBase struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func (r pgBase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// mapErr translates driver errors into the entity sentinels. A malformed
// uuid can never name an existing row, so it reads as not found. Values the
// column types or CHECK constraints refuse become ErrInvalid.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return entity.ErrDuplicate
		case invalidTextRepresentation:
			return entity.ErrNotFound
		case checkViolation, stringDataRightTruncation, numericValueOutOfRange:
			return fmt.Errorf("%w: %s", entity.ErrInvalid, pgErr.Message)
		}
	}
	return err
}
