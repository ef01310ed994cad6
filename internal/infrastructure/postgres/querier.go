package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es el mínimo común entre *pgxpool.Pool y pgx.Tx. Los repos se
// construyen sobre él y funcionan igual sueltos (pool) o dentro de una
// transacción (tx) sin cambiar una línea.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
