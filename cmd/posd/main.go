package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/cajapos/docs"
	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/application/receipt"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	infrapdf "github.com/jhoicas/cajapos/internal/infrastructure/pdf"
	"github.com/jhoicas/cajapos/internal/infrastructure/postgres"
	"github.com/jhoicas/cajapos/internal/infrastructure/remote"
	"github.com/jhoicas/cajapos/internal/infrastructure/sqlite"
	"github.com/jhoicas/cajapos/internal/infrastructure/static"
	httpRouter "github.com/jhoicas/cajapos/internal/interfaces/http"
	"github.com/jhoicas/cajapos/pkg/config"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// @title                      CajaPOS API
// @version                    1.0
// @description                API del nodo de caja: checkout offline-first, inventario transaccional y replicación al servicio central.
// @BasePath                   /
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("tenant", cfg.App.TenantID).
		Str("branch", cfg.App.BranchID).
		Msg("iniciando nodo de caja")

	ctx := context.Background()

	// Almacén local opcional. Sin Postgres el nodo solo lee (fallback a
	// dataset embebido); checkout, ajustes y comprobantes quedan inactivos.
	var (
		invTx        inventory.TxRunner
		catTx        catalog.TxRunner
		productRepo  repository.ProductRepository
		materialRepo repository.MaterialRepository
		recipeRepo   repository.RecipeRepository
		txnRepo      repository.TransactionRepository
		local        catalog.LocalStore
	)
	if cfg.DB.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("preparar esquema")
		}

		runner := postgres.NewTxRunner(pool)
		invTx = runner
		catTx = runner
		productRepo = postgres.NewProductRepository(pool)
		materialRepo = postgres.NewMaterialRepository(pool)
		recipeRepo = postgres.NewRecipeRepository(pool)
		txnRepo = postgres.NewTransactionRepository(pool)
		local = catalog.LocalStore{
			Products:     productRepo,
			Materials:    materialRepo,
			Recipes:      recipeRepo,
			Transactions: txnRepo,
		}
	} else {
		log.Warn().Msg("nodo sin almacén local: solo lecturas de catálogo")
	}

	// La cola de mutaciones es el corazón offline del nodo: siempre se abre,
	// haya o no remoto configurado.
	queueStore, err := sqlite.Open(cfg.Queue.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Queue.Path).Msg("abrir cola de mutaciones")
	}
	defer queueStore.Close()

	monitor := appsync.NewMonitor()

	// Servicio central opcional. Sin remoto la sonda no corre, el monitor se
	// queda offline y las mutaciones se acumulan en la cola.
	var (
		remoteSvc    appsync.RemoteService
		remoteReader catalog.RemoteReader
		prober       *remote.Prober
	)
	if cfg.Remote.Enabled {
		client := remote.NewClient(cfg.Remote, cfg.App.TenantID)
		remoteSvc = client
		remoteReader = client
		prober = remote.NewProber(cfg.Remote, monitor, log)
		prober.Start(ctx)
	}

	dispatcher := appsync.NewDispatcher(queueStore, remoteSvc, monitor, log, cfg.Remote.Timeout())
	dispatcher.Start(ctx)

	staticData, err := static.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cargar dataset embebido")
	}

	chain := catalog.NewFallbackChain(remoteReader, monitor, local, staticData, log)
	catalogUC := catalog.NewUseCase(catTx, dispatcher, log)
	checkoutUC := inventory.NewCheckoutUseCase(invTx, productRepo, recipeRepo, dispatcher, log)
	stockUC := inventory.NewStockUseCase(invTx, dispatcher, log)
	capacityUC := inventory.NewCapacityUseCase(productRepo, recipeRepo, materialRepo, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(materialRepo, log)
	receiptUC := receipt.NewUseCase(txnRepo, infrapdf.NewReceiptGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CajaPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CheckoutUC:      checkoutUC,
		StockUC:         stockUC,
		CapacityUC:      capacityUC,
		ReplenishmentUC: replenishmentUC,
		CatalogUC:       catalogUC,
		Chain:           chain,
		ReceiptUC:       receiptUC,
		Dispatcher:      dispatcher,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando nodo...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Orden de cierre: primero la sonda (deja de mover el monitor), luego el
	// dispatcher (espera pasadas en vuelo); la cola y el pool cierran al salir.
	if prober != nil {
		prober.Close()
	}
	dispatcher.Close()

	log.Info().Msg("nodo detenido")
}
