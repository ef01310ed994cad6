package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// CheckoutItem línea del carrito: producto y cantidad.
type CheckoutItem struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CheckoutInput entrada completa de una venta.
type CheckoutInput struct {
	TenantID      string
	BranchID      string
	UserID        string
	Items         []CheckoutItem
	Discount      decimal.Decimal
	PaymentMethod string
}

// CheckoutUseCase cierra ventas en caja: valoriza el carrito, descuenta el
// stock de productos e insumos de receta en UNA transacción y persiste la
// venta. Tras el commit encola las mutaciones para el servicio central; el
// encolado es el respaldo de durabilidad, nunca condición de la venta.
type CheckoutUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	recipeRepo  repository.RecipeRepository
	queue       Enqueuer
	log         *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(txRunner TxRunner, productRepo repository.ProductRepository, recipeRepo repository.RecipeRepository, queue Enqueuer, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		recipeRepo:  recipeRepo,
		queue:       queue,
		log:         log.Component("checkout"),
	}
}

// Checkout ejecuta la venta completa. Si algún producto o insumo no alcanza,
// devuelve ErrInsufficientStock y no persiste ni encola nada.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, input CheckoutInput) (*entity.Transaction, error) {
	if err := validateCheckout(&input); err != nil {
		return nil, err
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	// Lecturas previas a la transacción: precios y recetas no cambian en caja
	products := make(map[string]*entity.Product, len(input.Items))
	for _, it := range input.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := uc.productRepo.GetByID(input.TenantID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
		products[it.ProductID] = p
	}

	now := time.Now()
	txn := buildTransaction(input, products, now)
	if txn.Total.IsNegative() {
		return nil, fmt.Errorf("%w: descuento mayor que el subtotal", domain.ErrInvalidInput)
	}

	decrements, err := uc.materialDecrements(input)
	if err != nil {
		return nil, err
	}

	var updatedProducts []*entity.Product
	var ledger []DecrementResult
	err = uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		txnRepo repository.TransactionRepository,
	) error {
		// Stock propio de productos (sin libro)
		for _, it := range input.Items {
			if !products[it.ProductID].TrackStock {
				continue
			}
			p, err := decreaseProductInTx(productRepo, input.TenantID, it.ProductID, it.Quantity, now)
			if err != nil {
				return err
			}
			updatedProducts = append(updatedProducts, p)
		}

		// Insumos de receta: lote ordenado, con libro, misma tx
		for _, dec := range decrements {
			res, err := decreaseMaterialInTx(materialRepo, movementRepo, input.TenantID, input.BranchID,
				dec.MaterialID, dec.Quantity, entity.ReasonSale, "venta "+txn.ID, input.UserID, now)
			if err != nil {
				return err
			}
			ledger = append(ledger, *res)
		}

		return txnRepo.Create(txn)
	})
	if err != nil {
		return nil, err
	}

	uc.enqueueCheckout(ctx, txn, updatedProducts, ledger)

	uc.log.Info().
		Str("transaction", txn.ID).
		Str("total", txn.Total.String()).
		Int("items", len(txn.Items)).
		Msg("venta cerrada")
	return txn, nil
}

func validateCheckout(input *CheckoutInput) error {
	if input.TenantID == "" || input.BranchID == "" || input.UserID == "" {
		return domain.ErrInvalidInput
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: carrito vacío", domain.ErrInvalidInput)
	}
	for _, it := range input.Items {
		if it.ProductID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	}
	if input.Discount.IsNegative() {
		return domain.ErrInvalidInput
	}
	switch input.PaymentMethod {
	case "":
		input.PaymentMethod = entity.PaymentCash
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer:
	default:
		return fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, input.PaymentMethod)
	}
	return nil
}

// buildTransaction valoriza las líneas con el precio vigente del catálogo.
func buildTransaction(input CheckoutInput, products map[string]*entity.Product, now time.Time) *entity.Transaction {
	items := make([]entity.TransactionItem, 0, len(input.Items))
	subtotal := decimal.Zero
	for _, it := range input.Items {
		p := products[it.ProductID]
		line := p.Price.Mul(it.Quantity)
		items = append(items, entity.TransactionItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			LineTotal: line,
		})
		subtotal = subtotal.Add(line)
	}
	return &entity.Transaction{
		ID:            uuid.New().String(),
		TenantID:      input.TenantID,
		BranchID:      input.BranchID,
		Items:         items,
		Subtotal:      subtotal,
		Discount:      input.Discount,
		Total:         subtotal.Sub(input.Discount),
		PaymentMethod: input.PaymentMethod,
		CreatedAt:     now,
		CreatedBy:     input.UserID,
	}
}

// materialDecrements agrega el consumo de receta de todo el carrito en un
// lote ordenado por primera aparición: mismo carrito, mismo orden de lote.
func (uc *CheckoutUseCase) materialDecrements(input CheckoutInput) ([]StockDecrement, error) {
	recipes := make(map[string]*entity.Recipe, len(input.Items))
	var order []string
	needs := make(map[string]decimal.Decimal)

	for _, it := range input.Items {
		rec, ok := recipes[it.ProductID]
		if !ok {
			var err error
			rec, err = uc.recipeRepo.GetByProductID(input.TenantID, it.ProductID)
			if err != nil {
				return nil, err
			}
			recipes[it.ProductID] = rec
		}
		if rec == nil {
			continue
		}
		for _, ing := range rec.Ingredients {
			needed := ing.Quantity.Mul(it.Quantity)
			if !needed.GreaterThan(decimal.Zero) {
				continue
			}
			if _, seen := needs[ing.MaterialID]; !seen {
				order = append(order, ing.MaterialID)
			}
			needs[ing.MaterialID] = needs[ing.MaterialID].Add(needed)
		}
	}

	out := make([]StockDecrement, 0, len(order))
	for _, id := range order {
		out = append(out, StockDecrement{MaterialID: id, Quantity: needs[id]})
	}
	return out, nil
}

// enqueueCheckout encola las mutaciones de la venta ya confirmada: la venta,
// los productos con stock nuevo y los insumos con sus movimientos. Un fallo
// aquí se registra y no revierte nada: la venta local manda.
func (uc *CheckoutUseCase) enqueueCheckout(ctx context.Context, txn *entity.Transaction, products []*entity.Product, ledger []DecrementResult) {
	if uc.queue == nil {
		return
	}
	uc.enqueue(ctx, entity.KindTransaction, entity.OpInsert, dto.TransactionResponseFrom(txn))
	for _, p := range products {
		uc.enqueue(ctx, entity.KindProduct, entity.OpUpdate, dto.ProductResponseFrom(p))
	}
	for _, res := range ledger {
		uc.enqueue(ctx, entity.KindMaterial, entity.OpUpdate, dto.MaterialResponseFrom(res.Material))
		uc.enqueue(ctx, entity.KindStockMovement, entity.OpInsert, dto.StockMovementResponseFrom(res.Movement))
	}
}

func (uc *CheckoutUseCase) enqueue(ctx context.Context, kind entity.EntityKind, op entity.OperationKind, payload any) {
	enqueueMutation(ctx, uc.queue, uc.log, kind, op, payload)
}
