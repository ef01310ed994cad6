package receipt

import (
	"context"
	"fmt"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/domain/repository"
)

// Generator renderiza el comprobante de una venta (DIP: la infraestructura
// decide el formato; hoy es PDF de rollo 80mm).
type Generator interface {
	Receipt(ctx context.Context, txn *entity.Transaction) ([]byte, error)
}

// UseCase genera el comprobante interno de una venta cerrada. El comprobante
// sale del almacén local: certifica la escritura durable, no la replicación.
type UseCase struct {
	txnRepo   repository.TransactionRepository
	generator Generator
}

// NewUseCase construye el caso de uso. txnRepo nil indica nodo sin almacén
// local: no hay ventas locales de las que emitir comprobante.
func NewUseCase(txnRepo repository.TransactionRepository, generator Generator) *UseCase {
	return &UseCase{txnRepo: txnRepo, generator: generator}
}

// ForTransaction recupera la venta y genera su comprobante.
//
// Retorna:
//   - (pdfBytes, filename, nil)     si todo sale bien.
//   - domain.ErrInvalidInput        si falta tenant o id.
//   - domain.ErrLocalStoreDisabled  si el nodo opera sin Postgres.
//   - domain.ErrNotFound            si la venta no existe para ese tenant.
func (uc *UseCase) ForTransaction(ctx context.Context, tenantID, id string) ([]byte, string, error) {
	if tenantID == "" || id == "" {
		return nil, "", fmt.Errorf("%w: tenant e id de venta son obligatorios", domain.ErrInvalidInput)
	}
	if uc.txnRepo == nil {
		return nil, "", domain.ErrLocalStoreDisabled
	}

	txn, err := uc.txnRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: obtener venta: %w", err)
	}
	if txn == nil {
		return nil, "", domain.ErrNotFound
	}

	pdfBytes, err := uc.generator.Receipt(ctx, txn)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generación fallida: %w", err)
	}

	filename := fmt.Sprintf("ticket_%s.pdf", shortID(txn.ID))
	return pdfBytes, filename, nil
}

// shortID recorta un UUID a su primer bloque para nombres de archivo legibles.
func shortID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return id
}
