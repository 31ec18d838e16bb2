package pgsql

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
)

func TestStorageErrorClassifiesTransientFailures(t *testing.T) {
	transient := []string{
		"08000", // connection_exception
		"08006", // connection_failure
		"40001", // serialization_failure
		"40P01", // deadlock_detected
		"57P01", // admin_shutdown
	}
	for _, code := range transient {
		err := storageError("query failed", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, apperrors.ErrUnavailable, "SQLSTATE %s should be retryable", code)
		assert.Equal(t, 503, err.Code)
	}
}

func TestStorageErrorKeepsPermanentFailuresInternal(t *testing.T) {
	permanent := []string{
		"42703", // undefined_column
		"22P02", // invalid_text_representation
	}
	for _, code := range permanent {
		err := storageError("query failed", &pgconn.PgError{Code: code})
		assert.NotErrorIs(t, err, apperrors.ErrUnavailable, "SQLSTATE %s should stay internal", code)
		assert.Equal(t, 500, err.Code)
	}

	err := storageError("query failed", errors.New("scan mismatch"))
	assert.NotErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Equal(t, 500, err.Code)
}
