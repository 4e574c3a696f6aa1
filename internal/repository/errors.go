package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"orders/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqNotNullViolation    = "23502"
	pqCheckViolation      = "23514"
)

// mapError turns Postgres constraint violations into domain errors. Other
// errors are returned unchanged.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		return domain.NewError(domain.ErrConflict, "duplicate entry")
	case pqForeignKeyViolation:
		return domain.NewError(domain.ErrBadRequest, "referenced resource does not exist")
	case pqNotNullViolation:
		if pqErr.Column != "" {
			return domain.NewError(domain.ErrBadRequest, fmt.Sprintf("field %s is required", pqErr.Column))
		}
		return domain.NewError(domain.ErrBadRequest, "required field is missing")
	case pqCheckViolation:
		return domain.NewError(domain.ErrBadRequest, "value violates a check constraint")
	default:
		return err
	}
}
