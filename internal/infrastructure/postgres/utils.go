package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation en el protocolo de Postgres.
const uniqueViolationCode = "23505"

// isUniqueViolation detecta un choque de unicidad: SKU repetido en el
// catálogo o segunda receta para el mismo producto. Los repos lo traducen
// a domain.ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), uniqueViolationCode)
}
