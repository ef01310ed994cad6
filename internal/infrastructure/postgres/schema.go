package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
-- Catálogo de productos vendibles
CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    sku         TEXT NOT NULL,
    name        TEXT NOT NULL,
    price       NUMERIC(14,4) NOT NULL DEFAULT 0,
    stock       NUMERIC(14,4) NOT NULL DEFAULT 0,
    track_stock BOOLEAN NOT NULL DEFAULT false,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (tenant_id, sku)
);
CREATE INDEX IF NOT EXISTS idx_products_tenant ON products (tenant_id);

-- Insumos (materias primas) con su saldo vivo
CREATE TABLE IF NOT EXISTS materials (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    name       TEXT NOT NULL,
    stock      NUMERIC(14,4) NOT NULL DEFAULT 0,
    unit       TEXT NOT NULL,
    min_stock  NUMERIC(14,4) NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_materials_tenant ON materials (tenant_id);

-- Recetas: una por producto, ingredientes como documento
CREATE TABLE IF NOT EXISTS recipes (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    product_id TEXT NOT NULL,
    ingredients JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (tenant_id, product_id)
);

-- Ventas cerradas; las líneas del ticket viajan como documento
CREATE TABLE IF NOT EXISTS transactions (
    id             TEXT PRIMARY KEY,
    tenant_id      TEXT NOT NULL,
    branch_id      TEXT NOT NULL,
    items          JSONB NOT NULL DEFAULT '[]',
    subtotal       NUMERIC(14,4) NOT NULL DEFAULT 0,
    discount       NUMERIC(14,4) NOT NULL DEFAULT 0,
    total          NUMERIC(14,4) NOT NULL DEFAULT 0,
    payment_method TEXT NOT NULL DEFAULT 'cash',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_by     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_tenant_branch_date
    ON transactions (tenant_id, branch_id, created_at DESC);

-- Libro de stock: solo inserciones, nunca updates ni deletes
CREATE TABLE IF NOT EXISTS stock_movements (
    id             TEXT PRIMARY KEY,
    tenant_id      TEXT NOT NULL,
    branch_id      TEXT NOT NULL DEFAULT '',
    entity_id      TEXT NOT NULL,
    previous_stock NUMERIC(14,4) NOT NULL,
    new_stock      NUMERIC(14,4) NOT NULL,
    delta          NUMERIC(14,4) NOT NULL,
    reason         TEXT NOT NULL,
    note           TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_by     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_stock_movements_entity
    ON stock_movements (tenant_id, entity_id, created_at DESC);
`

// EnsureSchema crea las tablas del almacén local si no existen. El nodo de
// caja se aprovisiona solo: no hay paso de migración manual.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
