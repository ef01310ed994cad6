package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

// TxRunner ejecuta un callback dentro de una transacción del almacén local.
// Lo implementa postgres.TxRunner; nil representa un nodo sin Postgres.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materialRepo repository.MaterialRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		txnRepo repository.TransactionRepository,
	) error) error
}

// Enqueuer persiste una mutación en la cola local para su replicación.
type Enqueuer interface {
	Enqueue(ctx context.Context, rec *entity.MutationRecord) error
}

// RemoteReader es la cara de solo lectura del servicio central.
type RemoteReader interface {
	FetchProducts(ctx context.Context, tenantID string) ([]*entity.Product, error)
	FetchMaterials(ctx context.Context, tenantID string) ([]*entity.Material, error)
	FetchRecipes(ctx context.Context, tenantID string) ([]*entity.Recipe, error)
	FetchTransactions(ctx context.Context, tenantID, branchID string, from, to *time.Time) ([]*entity.Transaction, error)
}

// Conn informa si el servicio central está alcanzable; lo implementa el
// monitor de conectividad. nil significa "intentar siempre".
type Conn interface {
	Online() bool
}

// StaticSource es el último nivel de lectura: el dataset embebido en el
// binario. Siempre responde.
type StaticSource interface {
	Products(tenantID string) []*entity.Product
	Materials(tenantID string) []*entity.Material
	Recipes(tenantID string) []*entity.Recipe
}

// LocalStore agrupa los repositorios del nivel local. El valor cero (todos
// nil) representa un nodo que corre sin Postgres.
type LocalStore struct {
	Products     repository.ProductRepository
	Materials    repository.MaterialRepository
	Recipes      repository.RecipeRepository
	Transactions repository.TransactionRepository
}
