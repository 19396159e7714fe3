package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
)

const uniqueViolation = "23505"

// uniqueViolationOn reports whether err is a unique violation and, if so, which constraint fired.
func uniqueViolationOn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

func classifyInsertError(err error) error {
	constraint, ok := uniqueViolationOn(err)
	if !ok {
		return err
	}
	switch constraint {
	case activeOrderIndex:
		return ports.ErrActiveOrderExists
	case orderNumberIndex:
		return ports.ErrDuplicateOrderNumber
	default:
		return err
	}
}
