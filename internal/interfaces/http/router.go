package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/application/receipt"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CheckoutUC      *inventory.CheckoutUseCase
	StockUC         *inventory.StockUseCase
	CapacityUC      *inventory.CapacityUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	CatalogUC       *catalog.UseCase
	Chain           *catalog.FallbackChain
	ReceiptUC       *receipt.UseCase
	Dispatcher      *appsync.Dispatcher
	JWTSecret       string
}

// Router registra las rutas de la API. Toda ruta bajo /api exige token; las
// mutaciones de catálogo y el drenaje manual exigen además rol admin. El
// cobro queda abierto a cualquier rol autenticado: es la operación del día
// a día de la caja.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole("admin")

	// Checkout (cualquier rol autenticado)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC)
	api.Post("/checkout", checkoutHandler.Checkout)

	// Lecturas de catálogo vía cadena de fallback
	catalogHandler := NewCatalogHandler(deps.Chain)
	catalogGroup := api.Group("/catalog")
	catalogGroup.Get("/products", catalogHandler.Products)
	catalogGroup.Get("/materials", catalogHandler.Materials)
	catalogGroup.Get("/recipes", catalogHandler.Recipes)
	api.Get("/transactions", catalogHandler.Transactions)

	// Comprobante PDF (cualquier rol: el cajero reimprime tickets)
	receiptHandler := NewReceiptHandler(deps.ReceiptUC)
	api.Get("/transactions/:id/receipt", receiptHandler.Download)

	// Products: lecturas abiertas, mutaciones solo admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC, deps.CapacityUC)
	products.Get("/:id/capacity", productHandler.Capacity)
	products.Post("/", admin, productHandler.Create)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	// Materials: la lista de reposición la ve cualquiera; mutaciones y
	// ajustes de stock solo admin
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.CatalogUC, deps.StockUC, deps.ReplenishmentUC)
	materials.Get("/replenishment", materialHandler.Replenishment)
	materials.Post("/", admin, materialHandler.Create)
	materials.Put("/:id", admin, materialHandler.Update)
	materials.Delete("/:id", admin, materialHandler.Delete)
	materials.Post("/:id/adjust", admin, materialHandler.Adjust)

	// Sync: el estado lo ve cualquiera, el drenaje manual solo admin
	syncGroup := api.Group("/sync")
	syncHandler := NewSyncHandler(deps.Dispatcher)
	syncGroup.Get("/status", syncHandler.Status)
	syncGroup.Post("/flush", admin, syncHandler.Flush)
}
