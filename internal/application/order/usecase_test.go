package order

import (
	"context"
	"testing"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/testutil/memstore"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st       *memstore.Store
	uc       *OrderUseCase
	ann, bob int64
	orderID  int64
}

func newFixture(t *testing.T, paymentIntent *string) fixture {
	t.Helper()
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	bob := st.SeedUser("Bob", "bob@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	addToCart(t, st, ann, 7, 1)
	out, err := newCheckout(st).Checkout(context.Background(), ann, paymentIntent)
	require.NoError(t, err)
	return fixture{st: st, uc: NewOrderUseCase(st.Orders(), logger.Nop()), ann: ann, bob: bob, orderID: out.ID}
}

func TestGet_DuenoOAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got, err := f.uc.Get(ctx, f.orderID, f.ann, false)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.UserName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Taza", got.Items[0].Name)

	_, err = f.uc.Get(ctx, f.orderID, f.bob, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Get(ctx, f.orderID, f.bob, true)
	assert.NoError(t, err)

	_, err = f.uc.Get(ctx, 999, f.ann, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMine(t *testing.T) {
	f := newFixture(t, nil)
	mine, err := f.uc.ListMine(context.Background(), f.ann)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.uc.ListMine(context.Background(), f.bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestListAll_Filtros(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	out, err := f.uc.ListAll(ctx, dto.OrderQuery{Status: entity.OrderPending})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page.Total)

	out, err = f.uc.ListAll(ctx, dto.OrderQuery{Status: entity.OrderShipped})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Page.Total)

	_, err = f.uc.ListAll(ctx, dto.OrderQuery{FromDate: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus_MaquinaDeEstados(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	out, err := f.uc.UpdateStatus(ctx, 1, f.orderID, entity.OrderShipped, false)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderShipped, out.Status)

	_, err = f.uc.UpdateStatus(ctx, 1, f.orderID, entity.OrderPending, false)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	out, err = f.uc.UpdateStatus(ctx, 1, f.orderID, entity.OrderPending, true)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, out.Status)

	_, err = f.uc.UpdateStatus(ctx, 1, f.orderID, "perdido", true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.UpdateStatus(ctx, 1, 999, entity.OrderShipped, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyPaymentEvent(t *testing.T) {
	pi := "pi_abc"
	f := newFixture(t, &pi)
	ctx := context.Background()

	require.NoError(t, f.uc.ApplyPaymentEvent(ctx, pi, true))
	o, err := f.st.Orders().GetByID(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProcessing, o.Status)

	// repetir el evento no cambia nada
	require.NoError(t, f.uc.ApplyPaymentEvent(ctx, pi, true))

	require.NoError(t, f.uc.ApplyPaymentEvent(ctx, pi, false))
	o, err = f.st.Orders().GetByID(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, o.Status)

	assert.NoError(t, f.uc.ApplyPaymentEvent(ctx, "pi_desconocido", false))
}
