package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/testutil/memstore"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func addToCart(t require.TestingT, st *memstore.Store, userID, productID int64, qty int) {
	ctx := context.Background()
	cart, err := st.Carts().GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, st.Carts().UpsertItem(ctx, cart.ID, productID, qty))
}

func newCheckout(st *memstore.Store) *CheckoutUseCase {
	return NewCheckoutUseCase(st.TxRunner(), logger.Nop())
}

// ─── Escenarios ───────────────────────────────────────────────────────────────

func TestCheckout_Ann(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	addToCart(t, st, ann, 7, 2)

	out, err := newCheckout(st).Checkout(context.Background(), ann, nil)
	require.NoError(t, err)

	assert.Equal(t, "19.98", out.Total.StringFixed(2))
	assert.Equal(t, entity.OrderPending, out.Status)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(7), out.Items[0].ProductID)
	assert.Equal(t, 2, out.Items[0].Quantity)
	assert.Equal(t, "9.99", out.Items[0].Price.StringFixed(2))

	assert.Equal(t, 1, st.Inventory(7))
	assert.Equal(t, 0, st.CartSize(ann))
	assert.Equal(t, 1, st.OrderCount())
}

func TestCheckout_GuardaPaymentIntent(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	addToCart(t, st, ann, 7, 1)

	pi := "pi_123"
	out, err := newCheckout(st).Checkout(context.Background(), ann, &pi)
	require.NoError(t, err)
	require.NotNil(t, out.PaymentIntentID)
	assert.Equal(t, "pi_123", *out.PaymentIntentID)

	got, err := st.Orders().GetByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, out.ID, got.ID)
}

func TestCheckout_CarritoVacio(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	uc := newCheckout(st)

	_, err := uc.Checkout(context.Background(), ann, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCart, "sin carrito")

	_, err = st.Carts().GetOrCreate(context.Background(), ann)
	require.NoError(t, err)
	_, err = uc.Checkout(context.Background(), ann, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCart, "carrito sin líneas")
	assert.Equal(t, 0, st.OrderCount())
}

func TestCheckout_InventarioInsuficienteRevierteTodo(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	st.SeedProduct(8, "Plato", "4.50", 1)
	addToCart(t, st, ann, 7, 2)
	addToCart(t, st, ann, 8, 2)

	_, err := newCheckout(st).Checkout(context.Background(), ann, nil)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var inv *domain.InsufficientInventoryError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, int64(8), inv.ProductID)

	assert.Equal(t, 3, st.Inventory(7), "el descuento del primer producto se revierte")
	assert.Equal(t, 1, st.Inventory(8))
	assert.Equal(t, 2, st.CartSize(ann))
	assert.Equal(t, 0, st.OrderCount())
}

func TestCheckout_FalloAlVaciarCarritoRevierte(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	addToCart(t, st, ann, 7, 2)
	st.FailClear = errors.New("conexión perdida")

	_, err := newCheckout(st).Checkout(context.Background(), ann, nil)
	require.Error(t, err)

	st.FailClear = nil
	assert.Equal(t, 3, st.Inventory(7))
	assert.Equal(t, 1, st.CartSize(ann))
	assert.Equal(t, 0, st.OrderCount())
}

func TestCheckout_UsaPrecioActual(t *testing.T) {
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	addToCart(t, st, ann, 7, 2)

	ctx := context.Background()
	price := decimal.RequireFromString("5.00")
	require.NoError(t, st.Products().Update(ctx, 7, entity.ProductChanges{Price: &price}))

	out, err := newCheckout(st).Checkout(ctx, ann, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.00", out.Total.StringFixed(2))
}

// Usuarios distintos no comparten candado: compiten en el descuento condicional del ledger.
func TestCheckout_ConcurrenteSoloUnoGana(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := memstore.New()
	st.SeedProduct(7, "Taza", "9.99", 3)
	users := make([]int64, 4)
	for i := range users {
		users[i] = st.SeedUser(fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i), entity.RoleUser, "x")
		addToCart(t, st, users[i], 7, 3)
	}
	uc := newCheckout(st)

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = uc.Checkout(context.Background(), u, nil)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, st.Inventory(7))
	assert.Equal(t, 1, st.OrderCount())
}

// Un rollback deshace solo lo suyo: el descuento confirmado por otro comprador queda.
func TestCheckout_RollbackNoPisaOtroCheckout(t *testing.T) {
	defer goleak.VerifyNone(t)

	for round := 0; round < 20; round++ {
		st := memstore.New()
		st.SeedProduct(7, "Taza", "9.99", 10)
		st.SeedProduct(8, "Plato", "4.50", 0)
		buyer := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
		loser := st.SeedUser("Bob", "bob@example.com", entity.RoleUser, "x")
		addToCart(t, st, buyer, 7, 3)
		addToCart(t, st, loser, 7, 2)
		addToCart(t, st, loser, 8, 1)
		uc := newCheckout(st)

		var wg sync.WaitGroup
		var errBuyer, errLoser error
		wg.Add(2)
		go func() { defer wg.Done(); _, errBuyer = uc.Checkout(context.Background(), buyer, nil) }()
		go func() { defer wg.Done(); _, errLoser = uc.Checkout(context.Background(), loser, nil) }()
		wg.Wait()

		require.NoError(t, errBuyer)
		require.ErrorIs(t, errLoser, domain.ErrInsufficientStock)
		assert.Equal(t, 7, st.Inventory(7))
		assert.Equal(t, 1, st.OrderCount())
		assert.Equal(t, 0, st.CartSize(buyer))
		assert.Equal(t, 2, st.CartSize(loser))
	}
}

// Dos checkouts del mismo usuario se serializan en el bloqueo del carrito.
func TestCheckout_MismoUsuarioSeSerializa(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 10)
	addToCart(t, st, ann, 7, 2)
	uc := newCheckout(st)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = uc.Checkout(context.Background(), ann, nil)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 8, st.Inventory(7))
	assert.Equal(t, 1, st.OrderCount())
}

// ─── Propiedades ──────────────────────────────────────────────────────────────

func TestCheckout_PropiedadTotalYAtomicidad(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		st := memstore.New()
		user := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")

		n := rapid.IntRange(1, 6).Draw(rt, "lines")
		expected := decimal.Zero
		feasible := true
		inventory := map[int64]int{}
		qtys := map[int64]int{}
		for i := 0; i < n; i++ {
			cents := rapid.Int64Range(1, 100000).Draw(rt, "cents")
			inv := rapid.IntRange(0, 10).Draw(rt, "inventory")
			qty := rapid.IntRange(1, 10).Draw(rt, "qty")
			price := decimal.New(cents, -2)
			id := st.SeedProduct(0, fmt.Sprintf("p%d", i), price.StringFixed(2), inv)
			addToCart(rt, st, user, id, qty)

			inventory[id], qtys[id] = inv, qty
			expected = expected.Add(price.Mul(decimal.NewFromInt(int64(qty))))
			if qty > inv {
				feasible = false
			}
		}

		out, err := newCheckout(st).Checkout(context.Background(), user, nil)
		if feasible {
			require.NoError(rt, err)
			assert.True(rt, expected.Equal(out.Total), "total %s != %s", out.Total, expected)
			assert.Equal(rt, 0, st.CartSize(user))
			for id, inv := range inventory {
				assert.Equal(rt, inv-qtys[id], st.Inventory(id))
			}
			return
		}
		require.ErrorIs(rt, err, domain.ErrInsufficientStock)
		assert.Equal(rt, 0, st.OrderCount())
		assert.Equal(rt, n, st.CartSize(user))
		for id, inv := range inventory {
			assert.Equal(rt, inv, st.Inventory(id))
		}
	})
}
