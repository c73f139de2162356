// Package repository provides the gorm-backed data access layer.
package repository

import (
	"errors"
	"strings"

	"dojo/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// notFoundOr converts gorm's missing-row error into a NOT_FOUND AppError.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// uniqueViolation reports whether err is a unique constraint violation and,
// when it can tell, which column caused it.
func uniqueViolation(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false, ""
		}
		return true, violatedColumn(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, violatedColumn(msg)
	}
	return false, ""
}

func violatedColumn(text string) string {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "username"):
		return "username"
	case strings.Contains(text, "email"):
		return "email"
	default:
		return ""
	}
}
