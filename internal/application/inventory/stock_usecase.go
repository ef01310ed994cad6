package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/application/dto"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// StockDecrement es una línea de un lote de descuento: qué insumo y cuánto.
// El lote se aplica en el orden del slice.
type StockDecrement struct {
	MaterialID string
	Quantity   decimal.Decimal
}

// DecrementResult devuelve el insumo con su stock ya actualizado y la entrada
// del libro que dejó el descuento.
type DecrementResult struct {
	Material *entity.Material
	Movement *entity.StockMovement
}

// StockUseCase ejecuta los descuentos y ajustes de stock de forma atómica:
// cada operación abre una transacción, bloquea la fila (SELECT FOR UPDATE),
// valida el saldo y escribe stock y libro juntos. Dos cajas descontando el
// mismo insumo se serializan en el lock de fila; el stock nunca queda negativo.
type StockUseCase struct {
	txRunner TxRunner
	queue    Enqueuer
	log      *logger.Logger
}

// NewStockUseCase construye el caso de uso. Con cola, cada operación
// confirmada se encola para replicarse al servicio central; queue nil deja
// al nodo operando en modo aislado.
func NewStockUseCase(txRunner TxRunner, queue Enqueuer, log *logger.Logger) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, queue: queue, log: log.Component("stock")}
}

// DecreaseMaterialStock descuenta qty del insumo en una transacción propia.
// La entrada del libro es obligatoria y se escribe en la misma transacción:
// no existe descuento de insumo sin su movimiento.
func (uc *StockUseCase) DecreaseMaterialStock(ctx context.Context, tenantID, branchID, materialID string, qty decimal.Decimal, reason entity.MovementReason, note, userID string) (*DecrementResult, error) {
	if materialID == "" || !qty.GreaterThan(decimal.Zero) || !reason.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	var result *DecrementResult
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		res, err := decreaseMaterialInTx(materialRepo, movementRepo, tenantID, branchID, materialID, qty, reason, note, userID, now)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.replicate(ctx, *result)
	return result, nil
}

// DecreaseMaterialStockBatch aplica el lote completo en UNA transacción, en
// el orden del slice. El primer fallo (insumo agotado, inexistente) aborta y
// el Rollback revierte las líneas ya aplicadas: todo o nada.
func (uc *StockUseCase) DecreaseMaterialStockBatch(ctx context.Context, tenantID, branchID string, items []StockDecrement, reason entity.MovementReason, note, userID string) ([]DecrementResult, error) {
	if len(items) == 0 || !reason.Valid() {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.MaterialID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	results := make([]DecrementResult, 0, len(items))
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		for _, it := range items {
			res, err := decreaseMaterialInTx(materialRepo, movementRepo, tenantID, branchID, it.MaterialID, it.Quantity, reason, note, userID, now)
			if err != nil {
				return err
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.replicate(ctx, results...)
	return results, nil
}

// DecreaseProductStock descuenta stock propio de un producto vendible.
// A diferencia de los insumos, los productos no llevan libro de stock.
func (uc *StockUseCase) DecreaseProductStock(ctx context.Context, tenantID, productID string, qty decimal.Decimal) (*entity.Product, error) {
	if productID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	var result *entity.Product
	err := uc.txRunner.Run(ctx, func(
		_ repository.MaterialRepository,
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		p, err := decreaseProductInTx(productRepo, tenantID, productID, qty, now)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if uc.queue != nil {
		enqueueMutation(ctx, uc.queue, uc.log, entity.KindProduct, entity.OpUpdate, dto.ProductResponseFrom(result))
	}
	return result, nil
}

// AdjustMaterialStock aplica un delta con signo (conteo físico, merma,
// reposición, alta). El saldo no puede quedar negativo y el libro registra
// el ajuste en la misma transacción.
func (uc *StockUseCase) AdjustMaterialStock(ctx context.Context, tenantID, branchID, materialID string, delta decimal.Decimal, reason entity.MovementReason, note, userID string) (*DecrementResult, error) {
	if materialID == "" || delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	switch reason {
	case entity.ReasonInitial, entity.ReasonPurchase, entity.ReasonAdjustment, entity.ReasonWaste:
	default:
		// sale se reserva al flujo de checkout
		return nil, domain.ErrInvalidInput
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	var result *DecrementResult
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		mat, err := materialRepo.GetForUpdate(tenantID, materialID)
		if err != nil {
			return err
		}
		if mat == nil {
			return fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
		}
		prev := mat.Stock
		next := prev.Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, mat.Name)
		}
		mat.Stock = next
		mat.UpdatedAt = now
		if err := materialRepo.UpdateStock(tenantID, mat.ID, next); err != nil {
			return err
		}
		mov := entity.NewStockMovement(tenantID, branchID, mat.ID, prev, next, reason, note, userID, now)
		if err := movementRepo.Create(mov); err != nil {
			return err
		}
		result = &DecrementResult{Material: mat, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.replicate(ctx, *result)
	return result, nil
}

// replicate encola el insumo actualizado y su movimiento tras el commit.
// Un fallo de encolado se registra y no revierte nada: el estado local manda.
func (uc *StockUseCase) replicate(ctx context.Context, results ...DecrementResult) {
	if uc.queue == nil {
		return
	}
	for _, res := range results {
		enqueueMutation(ctx, uc.queue, uc.log, entity.KindMaterial, entity.OpUpdate, dto.MaterialResponseFrom(res.Material))
		enqueueMutation(ctx, uc.queue, uc.log, entity.KindStockMovement, entity.OpInsert, dto.StockMovementResponseFrom(res.Movement))
	}
}

// enqueueMutation serializa el payload y lo deja en la cola durable.
func enqueueMutation(ctx context.Context, queue Enqueuer, log *logger.Logger, kind entity.EntityKind, op entity.OperationKind, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("payload de mutación no serializable")
		return
	}
	if err := queue.Enqueue(ctx, appsync.NewRecord(kind, op, raw)); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Str("op", string(op)).Msg("mutación no encolada")
	}
}

// decreaseMaterialInTx es el camino único de descuento de insumo: bloquea la
// fila, valida saldo, escribe stock y libro. Lo comparten la operación
// suelta, el lote y el checkout (que lo invoca dentro de su propia tx).
func decreaseMaterialInTx(
	materialRepo repository.MaterialRepository,
	movementRepo repository.StockMovementRepository,
	tenantID, branchID, materialID string,
	qty decimal.Decimal,
	reason entity.MovementReason,
	note, userID string,
	now time.Time,
) (*DecrementResult, error) {
	mat, err := materialRepo.GetForUpdate(tenantID, materialID)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
	}
	if mat.Stock.LessThan(qty) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, mat.Name)
	}

	prev := mat.Stock
	mat.Stock = prev.Sub(qty)
	mat.UpdatedAt = now
	if err := materialRepo.UpdateStock(tenantID, mat.ID, mat.Stock); err != nil {
		return nil, err
	}

	mov := entity.NewStockMovement(tenantID, branchID, mat.ID, prev, mat.Stock, reason, note, userID, now)
	if err := movementRepo.Create(mov); err != nil {
		return nil, err
	}
	return &DecrementResult{Material: mat, Movement: mov}, nil
}

// decreaseProductInTx descuenta stock de producto dentro de una tx abierta.
// Productos sin seguimiento de stock pasan de largo sin tocar la fila.
func decreaseProductInTx(
	productRepo repository.ProductRepository,
	tenantID, productID string,
	qty decimal.Decimal,
	now time.Time,
) (*entity.Product, error) {
	p, err := productRepo.GetForUpdate(tenantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !p.TrackStock {
		return p, nil
	}
	if p.Stock.LessThan(qty) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
	}
	p.Stock = p.Stock.Sub(qty)
	p.UpdatedAt = now
	if err := productRepo.UpdateStock(tenantID, p.ID, p.Stock); err != nil {
		return nil, err
	}
	return p, nil
}
