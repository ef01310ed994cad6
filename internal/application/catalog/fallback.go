package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// Source etiqueta el nivel de la cadena que respondió una lectura.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceStatic Source = "static"
)

// FallbackChain resuelve lecturas de catálogo en cascada: servicio central,
// almacén local, dataset embebido. Un nivel que falla se registra y se salta;
// el estático siempre responde, así que las lecturas nunca devuelven error.
type FallbackChain struct {
	remote RemoteReader // nil cuando el remoto no está configurado
	conn   Conn
	local  LocalStore
	static StaticSource
	log    *logger.Logger
}

// NewFallbackChain construye la cadena. static es obligatorio; remote y los
// repos de local pueden ser nil según la configuración del nodo.
func NewFallbackChain(remote RemoteReader, conn Conn, local LocalStore, static StaticSource, log *logger.Logger) *FallbackChain {
	return &FallbackChain{
		remote: remote,
		conn:   conn,
		local:  local,
		static: static,
		log:    log.Component("catalog"),
	}
}

// Products lee el catálogo de productos del primer nivel que responda.
func (c *FallbackChain) Products(ctx context.Context, tenantID string) ([]*entity.Product, Source) {
	if c.tryRemote() {
		ps, err := c.remote.FetchProducts(ctx, tenantID)
		if err == nil {
			return ps, SourceRemote
		}
		c.log.Debug().Err(err).Msg("productos: nivel remoto no respondió")
	}
	if c.local.Products != nil {
		ps, err := c.local.Products.ListByTenant(tenantID, 0, 0)
		if err == nil {
			return ps, SourceLocal
		}
		c.log.Warn().Err(err).Msg("productos: nivel local no respondió")
	}
	return c.static.Products(tenantID), SourceStatic
}

// Materials lee los insumos del primer nivel que responda.
func (c *FallbackChain) Materials(ctx context.Context, tenantID string) ([]*entity.Material, Source) {
	if c.tryRemote() {
		ms, err := c.remote.FetchMaterials(ctx, tenantID)
		if err == nil {
			return ms, SourceRemote
		}
		c.log.Debug().Err(err).Msg("insumos: nivel remoto no respondió")
	}
	if c.local.Materials != nil {
		ms, err := c.local.Materials.ListByTenant(tenantID, 0, 0)
		if err == nil {
			return ms, SourceLocal
		}
		c.log.Warn().Err(err).Msg("insumos: nivel local no respondió")
	}
	return c.static.Materials(tenantID), SourceStatic
}

// Recipes lee las recetas del primer nivel que responda.
func (c *FallbackChain) Recipes(ctx context.Context, tenantID string) ([]*entity.Recipe, Source) {
	if c.tryRemote() {
		rs, err := c.remote.FetchRecipes(ctx, tenantID)
		if err == nil {
			return rs, SourceRemote
		}
		c.log.Debug().Err(err).Msg("recetas: nivel remoto no respondió")
	}
	if c.local.Recipes != nil {
		rs, err := c.local.Recipes.ListByTenant(tenantID)
		if err == nil {
			return rs, SourceLocal
		}
		c.log.Warn().Err(err).Msg("recetas: nivel local no respondió")
	}
	return c.static.Recipes(tenantID), SourceStatic
}

// TransactionsByDate lee ventas por sucursal y rango de fechas. El dataset
// estático no versiona ventas: su respuesta es la lista vacía.
func (c *FallbackChain) TransactionsByDate(ctx context.Context, tenantID, branchID string, from, to *time.Time) ([]*entity.Transaction, Source) {
	if c.tryRemote() {
		txns, err := c.remote.FetchTransactions(ctx, tenantID, branchID, from, to)
		if err == nil {
			return txns, SourceRemote
		}
		c.log.Debug().Err(err).Msg("ventas: nivel remoto no respondió")
	}
	if c.local.Transactions != nil {
		txns, err := c.local.Transactions.ListByDateRange(tenantID, branchID, from, to, 0, 0)
		if err == nil {
			return txns, SourceLocal
		}
		c.log.Warn().Err(err).Msg("ventas: nivel local no respondió")
	}
	return []*entity.Transaction{}, SourceStatic
}

// tryRemote decide si vale la pena tocar el nivel remoto: debe estar
// configurado y el monitor (si hay) debe verlo en línea.
func (c *FallbackChain) tryRemote() bool {
	if c.remote == nil {
		return false
	}
	return c.conn == nil || c.conn.Online()
}
