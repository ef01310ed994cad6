package receipt_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cajapos/internal/application/receipt"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeTxnRepo struct {
	txns map[string]*entity.Transaction
}

func (r *fakeTxnRepo) Create(*entity.Transaction) error { return nil }

func (r *fakeTxnRepo) GetByID(tenantID, id string) (*entity.Transaction, error) {
	txn, ok := r.txns[id]
	if !ok || txn.TenantID != tenantID {
		return nil, nil
	}
	return txn, nil
}

func (r *fakeTxnRepo) ListByDateRange(string, string, *time.Time, *time.Time, int, int) ([]*entity.Transaction, error) {
	return nil, nil
}

type fakeGenerator struct {
	out  []byte
	err  error
	last *entity.Transaction
}

func (g *fakeGenerator) Receipt(_ context.Context, txn *entity.Transaction) ([]byte, error) {
	g.last = txn
	return g.out, g.err
}

func saleFixture() *entity.Transaction {
	return &entity.Transaction{
		ID:       "aabbccdd-0000-0000-0000-000000000001",
		TenantID: "t1",
		BranchID: "b1",
		Items: []entity.TransactionItem{
			{ProductID: "p-latte", Name: "Latte", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("3.50"), LineTotal: decimal.RequireFromString("7.00")},
		},
		Subtotal:      decimal.RequireFromString("7.00"),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("7.00"),
		PaymentMethod: entity.PaymentCash,
		CreatedAt:     time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC),
		CreatedBy:     "u1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestForTransaction_GeneraComprobante(t *testing.T) {
	txn := saleFixture()
	repo := &fakeTxnRepo{txns: map[string]*entity.Transaction{txn.ID: txn}}
	gen := &fakeGenerator{out: []byte("%PDF-fake")}
	uc := receipt.NewUseCase(repo, gen)

	pdf, filename, err := uc.ForTransaction(context.Background(), "t1", txn.ID)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, "ticket_aabbccdd.pdf", filename)
	assert.Same(t, txn, gen.last, "el generador debe recibir la venta tal como está almacenada")
}

func TestForTransaction_VentaInexistente(t *testing.T) {
	repo := &fakeTxnRepo{txns: map[string]*entity.Transaction{}}
	uc := receipt.NewUseCase(repo, &fakeGenerator{})

	_, _, err := uc.ForTransaction(context.Background(), "t1", "no-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El tenant del token delimita la búsqueda: una venta de otro tenant es
// indistinguible de una inexistente.
func TestForTransaction_VentaDeOtroTenant(t *testing.T) {
	txn := saleFixture()
	repo := &fakeTxnRepo{txns: map[string]*entity.Transaction{txn.ID: txn}}
	uc := receipt.NewUseCase(repo, &fakeGenerator{})

	_, _, err := uc.ForTransaction(context.Background(), "t2", txn.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestForTransaction_SinAlmacenLocal(t *testing.T) {
	uc := receipt.NewUseCase(nil, &fakeGenerator{})

	_, _, err := uc.ForTransaction(context.Background(), "t1", "cualquiera")

	assert.ErrorIs(t, err, domain.ErrLocalStoreDisabled)
}

func TestForTransaction_EntradaInvalida(t *testing.T) {
	uc := receipt.NewUseCase(&fakeTxnRepo{}, &fakeGenerator{})

	_, _, err := uc.ForTransaction(context.Background(), "", "id")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = uc.ForTransaction(context.Background(), "t1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestForTransaction_FalloDelGenerador(t *testing.T) {
	txn := saleFixture()
	repo := &fakeTxnRepo{txns: map[string]*entity.Transaction{txn.ID: txn}}
	uc := receipt.NewUseCase(repo, &fakeGenerator{err: fmt.Errorf("sin fuente helvetica")})

	_, _, err := uc.ForTransaction(context.Background(), "t1", txn.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generación fallida")
}
