package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Postgres SQLSTATEs the ledger reacts to
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// TranslateError maps driver and gorm errors onto domain errors. Errors it
// does not recognise, domain errors included, pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return shared.ErrAlreadyExists.WithDetail("constraint", pgErr.ConstraintName)
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return shared.ErrConcurrencyConflict.WithDetail("sqlstate", pgErr.Code)
		}
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(TranslateError(err), shared.ErrAlreadyExists)
}
