package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrConcurrentUpdate is returned when a conditional update matched no rows
	ErrConcurrentUpdate = errors.New("row was changed concurrently")
	// ErrNoRowsAffected is returned by updates and deletes that target a missing row
	ErrNoRowsAffected = errors.New("no rows affected")
	// ErrDuplicateKey wraps unique constraint violations
	ErrDuplicateKey = errors.New("duplicate key")
)

// translateError maps driver-specific unique violations onto ErrDuplicateKey. The
// gorm connection is opened with TranslateError so ErrDuplicatedKey is the usual
// path; the SQLSTATE check covers connections opened without it.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505") {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}

// IsConflict reports whether err came from a lost race on a unique row
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrDuplicateKey)
}
