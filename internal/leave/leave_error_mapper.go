package leave

import (
	leaveerrors "staffsync/internal/leave/errors"
	"staffsync/internal/shared/apperror"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapRepositoryError classifies a store error. notFound is returned for a
// missing row; AppErrors pass through untouched.
func mapRepositoryError(err error, notFound *apperror.AppError) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return leaveerrors.ErrConcurrentModification.WithCause(err)
		}
	}

	return leaveerrors.ErrStore.WithCause(err)
}
