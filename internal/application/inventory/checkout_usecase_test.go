package inventory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cajapos/internal/application/dto"
	"github.com/jhoicas/cajapos/internal/application/inventory"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/pkg/logger"
)

func TestCheckout_VentaCompleta(t *testing.T) {
	store := newFakeStore()
	store.addProduct("latte", "3.50", "0", false)
	store.addProduct("agua", "2.50", "10", true)
	store.addMaterial("cafe", "1000", "g")
	store.addMaterial("leche", "500", "ml")
	store.addRecipe("latte", ing("cafe", "18", "g"), ing("leche", "200", "ml"))
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	txn, err := uc.Checkout(context.Background(), inventory.CheckoutInput{
		TenantID: testTenant,
		BranchID: testBranch,
		UserID:   testUser,
		Items: []inventory.CheckoutItem{
			{ProductID: "latte", Quantity: dec("2")},
			{ProductID: "agua", Quantity: dec("1")},
		},
		Discount:      dec("0.50"),
		PaymentMethod: entity.PaymentCard,
	})

	require.NoError(t, err)
	assert.True(t, txn.Subtotal.Equal(dec("9.50")), "2 x 3.50 + 1 x 2.50")
	assert.True(t, txn.Total.Equal(dec("9.00")))
	assert.Equal(t, entity.PaymentCard, txn.PaymentMethod)
	require.Len(t, txn.Items, 2)
	assert.True(t, txn.Items[0].LineTotal.Equal(dec("7.00")))

	// Efectos locales: receta descontada, stock propio descontado, venta persistida
	assert.True(t, store.materialStock("cafe").Equal(dec("964")))
	assert.True(t, store.materialStock("leche").Equal(dec("100")))
	assert.True(t, store.productStock("agua").Equal(dec("9")))
	assert.True(t, store.productStock("latte").Equal(dec("0")), "sin TrackStock la fila no se toca")
	require.Len(t, store.transactions(), 1)
	assert.Equal(t, txn.ID, store.transactions()[0].ID)
	assert.Len(t, store.allMovements(), 2, "un movimiento por insumo consumido")

	// Replicación: la venta encabeza, luego catálogo e insumos con su libro
	recs := queue.records()
	require.Len(t, recs, 6)
	wantKinds := []entity.EntityKind{
		entity.KindTransaction,
		entity.KindProduct,
		entity.KindMaterial,
		entity.KindStockMovement,
		entity.KindMaterial,
		entity.KindStockMovement,
	}
	for i, kind := range wantKinds {
		assert.Equal(t, kind, recs[i].Kind, "registro %d", i)
	}
	assert.Equal(t, entity.OpInsert, recs[0].Op)

	var sale dto.TransactionResponse
	require.NoError(t, json.Unmarshal(recs[0].Payload, &sale))
	assert.Equal(t, txn.ID, sale.ID, "el payload replica la venta confirmada")
}

// TestCheckout_ConcurrenciaInsumoCompartido: dos ventas simultáneas de un
// producto cuya receta pide 6 ml contra un stock de 10. Una gana, la otra
// recibe ErrInsufficientStock, el saldo queda en 4 y solo la ganadora
// persiste y replica.
func TestCheckout_ConcurrenciaInsumoCompartido(t *testing.T) {
	store := newFakeStore()
	store.addProduct("te", "2.00", "0", false)
	store.addMaterial("leche", "10", "ml")
	store.addRecipe("te", ing("leche", "6", "ml"))
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Checkout(context.Background(), inventory.CheckoutInput{
				TenantID: testTenant,
				BranchID: testBranch,
				UserID:   testUser,
				Items:    []inventory.CheckoutItem{{ProductID: "te", Quantity: dec("1")}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var oks, fails int
	for err := range errs {
		if err == nil {
			oks++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		fails++
	}
	assert.Equal(t, 1, oks, "exactamente una venta debe cerrar")
	assert.Equal(t, 1, fails)
	assert.True(t, store.materialStock("leche").Equal(dec("4")), "10 - 6, jamás negativo")
	assert.Len(t, store.transactions(), 1, "solo la ganadora persiste")
	assert.Len(t, queue.records(), 3, "la perdedora no encola nada")
}

func TestCheckout_InsumoInsuficienteNoDejaRastro(t *testing.T) {
	store := newFakeStore()
	store.addProduct("latte", "3.50", "0", false)
	store.addMaterial("cafe", "10", "g")
	store.addRecipe("latte", ing("cafe", "18", "g"))
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	_, err := uc.Checkout(context.Background(), cartOf("latte", "1"))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.materialStock("cafe").Equal(dec("10")))
	assert.Empty(t, store.transactions())
	assert.Empty(t, store.allMovements())
	assert.Empty(t, queue.records())
}

func TestCheckout_ProductoInsuficienteNoDejaRastro(t *testing.T) {
	store := newFakeStore()
	store.addProduct("agua", "2.50", "1", true)
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	_, err := uc.Checkout(context.Background(), cartOf("agua", "2"))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.productStock("agua").Equal(dec("1")))
	assert.Empty(t, store.transactions())
	assert.Empty(t, queue.records())
}

func TestCheckout_ProductoDesconocido(t *testing.T) {
	store := newFakeStore()
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	_, err := uc.Checkout(context.Background(), cartOf("fantasma", "1"))

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, queue.records())
}

func TestCheckout_Validaciones(t *testing.T) {
	store := newFakeStore()
	store.addProduct("agua", "2.50", "10", true)
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)
	ctx := context.Background()

	_, err := uc.Checkout(ctx, inventory.CheckoutInput{TenantID: testTenant, BranchID: testBranch, UserID: testUser})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "carrito vacío")

	_, err = uc.Checkout(ctx, inventory.CheckoutInput{
		TenantID: testTenant, BranchID: testBranch, UserID: testUser,
		Items: []inventory.CheckoutItem{{ProductID: "agua", Quantity: dec("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Checkout(ctx, inventory.CheckoutInput{
		TenantID: testTenant, BranchID: testBranch, UserID: testUser,
		Items:    []inventory.CheckoutItem{{ProductID: "agua", Quantity: dec("1")}},
		Discount: dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento negativo")

	_, err = uc.Checkout(ctx, inventory.CheckoutInput{
		TenantID: testTenant, BranchID: testBranch, UserID: testUser,
		Items:         []inventory.CheckoutItem{{ProductID: "agua", Quantity: dec("1")}},
		PaymentMethod: "cripto",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "método de pago desconocido")

	_, err = uc.Checkout(ctx, inventory.CheckoutInput{
		TenantID: testTenant, BranchID: testBranch, UserID: testUser,
		Items:    []inventory.CheckoutItem{{ProductID: "agua", Quantity: dec("1")}},
		Discount: dec("100"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento mayor que el subtotal")

	_, err = uc.Checkout(ctx, inventory.CheckoutInput{
		BranchID: testBranch, UserID: testUser,
		Items: []inventory.CheckoutItem{{ProductID: "agua", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin tenant no hay venta")

	assert.Empty(t, store.transactions(), "ninguna validación fallida debe persistir")
	assert.Empty(t, queue.records())
}

func TestCheckout_PagoPorDefectoEsEfectivo(t *testing.T) {
	store := newFakeStore()
	store.addProduct("agua", "2.50", "10", true)
	uc := newCheckout(store, &fakeEnqueuer{})

	txn, err := uc.Checkout(context.Background(), cartOf("agua", "1"))

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, txn.PaymentMethod)
}

// TestCheckout_LineasRepetidasAgreganConsumo: el mismo producto en dos líneas
// consume la receta una sola vez agregada, con un único movimiento por insumo.
func TestCheckout_LineasRepetidasAgreganConsumo(t *testing.T) {
	store := newFakeStore()
	store.addProduct("latte", "3.50", "0", false)
	store.addMaterial("cafe", "100", "g")
	store.addRecipe("latte", ing("cafe", "18", "g"))
	queue := &fakeEnqueuer{}
	uc := newCheckout(store, queue)

	txn, err := uc.Checkout(context.Background(), inventory.CheckoutInput{
		TenantID: testTenant,
		BranchID: testBranch,
		UserID:   testUser,
		Items: []inventory.CheckoutItem{
			{ProductID: "latte", Quantity: dec("1")},
			{ProductID: "latte", Quantity: dec("1")},
		},
	})

	require.NoError(t, err)
	require.Len(t, txn.Items, 2, "las líneas del ticket se respetan")
	assert.True(t, store.materialStock("cafe").Equal(dec("64")))
	assert.Len(t, store.movementsFor("cafe"), 1, "un solo descuento agregado en el libro")
}

// TestCheckout_EncoladoFallidoNoRevierte: la cola caída no puede tumbar una
// venta ya confirmada en el almacén local.
func TestCheckout_EncoladoFallidoNoRevierte(t *testing.T) {
	store := newFakeStore()
	store.addProduct("agua", "2.50", "10", true)
	queue := &fakeEnqueuer{failWith: fmt.Errorf("cola cerrada")}
	uc := newCheckout(store, queue)

	txn, err := uc.Checkout(context.Background(), cartOf("agua", "1"))

	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Len(t, store.transactions(), 1)
	assert.True(t, store.productStock("agua").Equal(dec("9")))
	assert.Empty(t, queue.records())
}

// TestCheckout_SinColaOperaAislado: un nodo armado sin cola (queue nil)
// vende igual; la venta se confirma local y simplemente no se replica.
func TestCheckout_SinColaOperaAislado(t *testing.T) {
	store := newFakeStore()
	store.addProduct("agua", "2.50", "10", true)
	uc := inventory.NewCheckoutUseCase(&fakeTxRunner{store: store}, store.productRepo(), store.recipeRepo(), nil, logger.Nop())

	txn, err := uc.Checkout(context.Background(), cartOf("agua", "1"))

	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Len(t, store.transactions(), 1)
	assert.True(t, store.productStock("agua").Equal(dec("9")))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func newCheckout(store *fakeStore, queue *fakeEnqueuer) *inventory.CheckoutUseCase {
	return inventory.NewCheckoutUseCase(&fakeTxRunner{store: store}, store.productRepo(), store.recipeRepo(), queue, logger.Nop())
}

func cartOf(productID, qty string) inventory.CheckoutInput {
	return inventory.CheckoutInput{
		TenantID: testTenant,
		BranchID: testBranch,
		UserID:   testUser,
		Items:    []inventory.CheckoutItem{{ProductID: productID, Quantity: dec(qty)}},
	}
}

func ing(materialID, qty, unit string) entity.RecipeIngredient {
	return entity.RecipeIngredient{MaterialID: materialID, Name: materialID, Quantity: dec(qty), Unit: unit}
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	recs     []*entity.MutationRecord
	failWith error
}

var _ inventory.Enqueuer = (*fakeEnqueuer)(nil)

func (f *fakeEnqueuer) Enqueue(_ context.Context, rec *entity.MutationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeEnqueuer) records() []*entity.MutationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.MutationRecord(nil), f.recs...)
}
