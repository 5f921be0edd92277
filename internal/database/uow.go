package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
)

// Postgres SQLSTATE codes reported when concurrency control aborts a
// transaction.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// UnitOfWork runs a function inside one database transaction. Everything fn
// writes through tx commits together, or nothing does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormUnitOfWork is the gorm-backed UnitOfWork.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork on db.
func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn in a transaction. A non-nil error from fn, or a failed commit,
// rolls everything back. Concurrency aborts from the database come back as
// ErrConsistencyConflict.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return TranslateError(u.db.WithContext(ctx).Transaction(fn))
}

// TranslateError maps database concurrency failures to
// ErrConsistencyConflict. AppErrors and any other error pass through
// unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return apperrors.Wrap(apperrors.ErrConsistencyConflict, err)
		}
		return err
	}

	// SQLITE_BUSY once the busy timeout has elapsed.
	if strings.Contains(err.Error(), "database is locked") {
		return apperrors.Wrap(apperrors.ErrConsistencyConflict, err)
	}

	return err
}
