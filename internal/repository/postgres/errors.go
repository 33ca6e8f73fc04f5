// Package postgres implements the entity repositories on PostgreSQL through
// database/sql and lib/pq.
package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/vitrine/internal/domain"
)

// Postgres error codes the repositories translate.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// translate maps driver errors onto domain sentinels, keeping the cause.
func translate(op string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrAlreadyExists, pqErr.Constraint)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pqErr.Constraint)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
