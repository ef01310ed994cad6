package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cajapos/internal/application/dto"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// UseCase mantiene el catálogo con escritura doble: la fila local primero y
// la mutación a la cola después. La cola replica hacia el servicio central
// cuando hay conexión; un fallo al encolar se registra y no revierte la
// escritura local.
type UseCase struct {
	txRunner TxRunner // nil cuando el nodo corre sin Postgres
	queue    Enqueuer
	log      *logger.Logger
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(txRunner TxRunner, queue Enqueuer, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		queue:    queue,
		log:      log.Component("catalog"),
	}
}

// CreateProduct da de alta un producto y encola su réplica.
func (uc *UseCase) CreateProduct(ctx context.Context, tenantID string, req *dto.CreateProductRequest) (*entity.Product, error) {
	if tenantID == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.SKU) == "" {
		return nil, fmt.Errorf("%w: sku y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if req.Price.IsNegative() || req.Stock.IsNegative() {
		return nil, fmt.Errorf("%w: precio y stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	p := &entity.Product{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		SKU:        strings.TrimSpace(req.SKU),
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price,
		Stock:      req.Stock,
		TrackStock: req.TrackStock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.Run(ctx, func(
		_ repository.MaterialRepository,
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		return productRepo.Create(p)
	})
	if err != nil {
		return nil, err
	}

	uc.enqueue(ctx, entity.KindProduct, entity.OpInsert, dto.ProductResponseFrom(p))
	uc.log.Info().Str("product", p.ID).Str("sku", p.SKU).Msg("producto creado")
	return p, nil
}

// UpdateProduct aplica un parche parcial bajo lock de fila y encola el
// estado resultante completo.
func (uc *UseCase) UpdateProduct(ctx context.Context, tenantID, id string, req *dto.UpdateProductRequest) (*entity.Product, error) {
	if tenantID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	if req.Name == nil && req.Price == nil && req.TrackStock == nil {
		return nil, fmt.Errorf("%w: nada que actualizar", domain.ErrInvalidInput)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(
		_ repository.MaterialRepository,
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		p, err := productRepo.GetForUpdate(tenantID, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.TrackStock != nil {
			p.TrackStock = *req.TrackStock
		}
		p.UpdatedAt = time.Now()
		if err := productRepo.Update(p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.enqueue(ctx, entity.KindProduct, entity.OpUpdate, dto.ProductResponseFrom(updated))
	return updated, nil
}

// DeleteProduct elimina el producto local y encola la baja.
func (uc *UseCase) DeleteProduct(ctx context.Context, tenantID, id string) error {
	if tenantID == "" || id == "" {
		return domain.ErrInvalidInput
	}
	if uc.txRunner == nil {
		return domain.ErrLocalStoreDisabled
	}

	err := uc.txRunner.Run(ctx, func(
		_ repository.MaterialRepository,
		productRepo repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		p, err := productRepo.GetByID(tenantID, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		return productRepo.Delete(tenantID, id)
	})
	if err != nil {
		return err
	}

	uc.enqueue(ctx, entity.KindProduct, entity.OpDelete, dto.DeletePayload{ID: id})
	uc.log.Info().Str("product", id).Msg("producto eliminado")
	return nil
}

// CreateMaterial da de alta un insumo. Si nace con stock, la misma
// transacción deja el movimiento inicial en el libro.
func (uc *UseCase) CreateMaterial(ctx context.Context, tenantID, branchID, userID string, req *dto.CreateMaterialRequest) (*entity.Material, error) {
	if tenantID == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Unit) == "" {
		return nil, fmt.Errorf("%w: nombre y unidad son obligatorios", domain.ErrInvalidInput)
	}
	if req.Stock.IsNegative() || req.MinStock.IsNegative() {
		return nil, fmt.Errorf("%w: stock y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	now := time.Now()
	m := &entity.Material{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		Stock:     req.Stock,
		Unit:      strings.TrimSpace(req.Unit),
		MinStock:  req.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var mv *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		if err := materialRepo.Create(m); err != nil {
			return err
		}
		if !m.Stock.GreaterThan(decimal.Zero) {
			return nil
		}
		mv = entity.NewStockMovement(tenantID, branchID, m.ID, decimal.Zero, m.Stock,
			entity.ReasonInitial, "alta de insumo", userID, now)
		return movementRepo.Create(mv)
	})
	if err != nil {
		return nil, err
	}

	uc.enqueue(ctx, entity.KindMaterial, entity.OpInsert, dto.MaterialResponseFrom(m))
	if mv != nil {
		uc.enqueue(ctx, entity.KindStockMovement, entity.OpInsert, dto.StockMovementResponseFrom(mv))
	}
	uc.log.Info().Str("material", m.ID).Str("stock", m.Stock.String()).Msg("insumo creado")
	return m, nil
}

// UpdateMaterial aplica un parche parcial; el stock queda fuera de este
// camino, solo se mueve por checkout o ajustes.
func (uc *UseCase) UpdateMaterial(ctx context.Context, tenantID, id string, req *dto.UpdateMaterialRequest) (*entity.Material, error) {
	if tenantID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	if req.Name == nil && req.Unit == nil && req.MinStock == nil {
		return nil, fmt.Errorf("%w: nada que actualizar", domain.ErrInvalidInput)
	}
	if req.MinStock != nil && req.MinStock.IsNegative() {
		return nil, fmt.Errorf("%w: el mínimo no puede ser negativo", domain.ErrInvalidInput)
	}
	if uc.txRunner == nil {
		return nil, domain.ErrLocalStoreDisabled
	}

	var updated *entity.Material
	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		m, err := materialRepo.GetForUpdate(tenantID, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		if req.Name != nil {
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.Unit != nil {
			m.Unit = strings.TrimSpace(*req.Unit)
		}
		if req.MinStock != nil {
			m.MinStock = *req.MinStock
		}
		m.UpdatedAt = time.Now()
		if err := materialRepo.Update(m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.enqueue(ctx, entity.KindMaterial, entity.OpUpdate, dto.MaterialResponseFrom(updated))
	return updated, nil
}

// DeleteMaterial elimina el insumo local y encola la baja.
func (uc *UseCase) DeleteMaterial(ctx context.Context, tenantID, id string) error {
	if tenantID == "" || id == "" {
		return domain.ErrInvalidInput
	}
	if uc.txRunner == nil {
		return domain.ErrLocalStoreDisabled
	}

	err := uc.txRunner.Run(ctx, func(
		materialRepo repository.MaterialRepository,
		_ repository.ProductRepository,
		_ repository.StockMovementRepository,
		_ repository.TransactionRepository,
	) error {
		m, err := materialRepo.GetByID(tenantID, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
		}
		return materialRepo.Delete(tenantID, id)
	})
	if err != nil {
		return err
	}

	uc.enqueue(ctx, entity.KindMaterial, entity.OpDelete, dto.DeletePayload{ID: id})
	uc.log.Info().Str("material", id).Msg("insumo eliminado")
	return nil
}

func (uc *UseCase) enqueue(ctx context.Context, kind entity.EntityKind, op entity.OperationKind, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		uc.log.Error().Err(err).Str("kind", string(kind)).Msg("payload de mutación no serializable")
		return
	}
	if err := uc.queue.Enqueue(ctx, appsync.NewRecord(kind, op, raw)); err != nil {
		uc.log.Warn().Err(err).Str("kind", string(kind)).Str("op", string(op)).Msg("mutación no encolada")
	}
}
