package gamedb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// Sentinel errors for the game repository layer.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("game record not found")

	// ErrDuplicateBet indicates the participant already has a bet for the instance.
	ErrDuplicateBet = errors.New("bet already exists for participant and instance")

	// ErrResultExists indicates the instance has already been resolved.
	ErrResultExists = errors.New("instance already resolved")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == uniqueViolation
	}
	return false
}
