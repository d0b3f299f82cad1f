package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure on
// Postgres or SQLite. When constraintName is provided the message must
// mention it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	if pkgerrors.SQLState(err) == sqlStateUniqueViolation {
		return constraintName == "" || strings.Contains(msg, constraintName) || strings.Contains(pkgerrors.Dump(err).PGConstraint, constraintName)
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsNotFound reports whether err is gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
