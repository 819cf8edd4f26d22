package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested entity id is absent.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when a uniqueness or foreign-key
	// constraint rejects a write.
	ErrConstraint = errors.New("constraint violation")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// constraintError maps Postgres constraint failures onto ErrConstraint so
// callers never branch on driver-specific errors.
func constraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqForeignKeyViolation, pqCheckViolation:
			return fmt.Errorf("%w: %s", ErrConstraint, pqErr.Constraint)
		}
	}
	return err
}
