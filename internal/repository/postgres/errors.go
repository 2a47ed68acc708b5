package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// isForeignKeyViolation проверяет Postgres foreign key violation (23503)
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return true
	}
	return false
}

// translateWriteError приводит ошибки записи к ошибкам приложения
func translateWriteError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", apperrors.ErrConflict, what)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s references a missing parent", apperrors.ErrIntegrity, what)
	default:
		return fmt.Errorf("create %s: %w", what, err)
	}
}

// translateReadError приводит gorm.ErrRecordNotFound к apperrors.ErrNotFound
func translateReadError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return err
}
