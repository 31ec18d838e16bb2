package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// storageError classifies a driver failure. Connection loss (SQLSTATE class
// 08), serialization and deadlock failures (40001, 40P01), admin shutdown
// (57P01) and retryable network errors surface as Unavailable so callers can
// retry with backoff; everything else stays an internal error.
func storageError(message string, err error) *apperrors.AppError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "40001",
			pgErr.Code == "40P01",
			pgErr.Code == "57P01":
			return apperrors.NewUnavailableError(message, err)
		}
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return apperrors.NewUnavailableError(message, err)
	}
	return apperrors.NewAppError(500, message, err)
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, storageError("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return storageError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return storageError("failed to rollback transaction", err)
	}
	return nil
}
