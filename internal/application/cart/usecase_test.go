package cart

import (
	"context"
	"testing"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*CartUseCase, *memstore.Store, int64, int64) {
	t.Helper()
	st := memstore.New()
	ann := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	bob := st.SeedUser("Bob", "bob@example.com", entity.RoleUser, "x")
	st.SeedProduct(7, "Taza", "9.99", 3)
	st.SeedProduct(8, "Plato", "4.50", 10)
	return NewCartUseCase(st.Carts(), st.Products()), st, ann, bob
}

func TestView_CreaCarritoVacio(t *testing.T) {
	uc, _, ann, _ := setup(t)
	ctx := context.Background()

	first, err := uc.View(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, first.Items)
	assert.True(t, first.Total.IsZero())

	second, err := uc.View(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "un solo carrito por usuario")
}

func TestAddItem_FusionaLineas(t *testing.T) {
	uc, _, ann, _ := setup(t)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, ann, 7, 1)
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, ann, 7, 2)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, 3, out.Items[0].Quantity)
	assert.Equal(t, "29.97", out.Total.StringFixed(2))
}

func TestAddItem_Validaciones(t *testing.T) {
	uc, _, ann, _ := setup(t)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, ann, 7, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddItem(ctx, ann, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.AddItem(ctx, ann, 7, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestUpdateQuantity(t *testing.T) {
	uc, st, ann, _ := setup(t)
	ctx := context.Background()

	out, err := uc.AddItem(ctx, ann, 8, 2)
	require.NoError(t, err)
	itemID := out.Items[0].ID

	out, err = uc.UpdateQuantity(ctx, ann, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Items[0].Quantity)
	assert.Equal(t, "22.50", out.Total.StringFixed(2))

	out, err = uc.UpdateQuantity(ctx, ann, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 0, st.CartSize(ann))
}

func TestUpdateQuantity_ItemAjeno(t *testing.T) {
	uc, st, ann, bob := setup(t)
	ctx := context.Background()

	annCart, err := uc.AddItem(ctx, ann, 8, 2)
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, bob, 7, 1)
	require.NoError(t, err)
	annItem := annCart.Items[0].ID

	_, err = uc.UpdateQuantity(ctx, bob, annItem, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.UpdateQuantity(ctx, bob, annItem, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.RemoveItem(ctx, bob, annItem)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	annView, err := uc.View(ctx, ann)
	require.NoError(t, err)
	require.Len(t, annView.Items, 1)
	assert.Equal(t, 2, annView.Items[0].Quantity)

	bobView, err := uc.View(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobView.Items, 1)
	assert.Equal(t, 1, bobView.Items[0].Quantity)
	assert.Equal(t, 1, st.CartSize(bob))
}

func TestRemoveItemYClear(t *testing.T) {
	uc, st, ann, _ := setup(t)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, ann, 7, 1)
	require.NoError(t, err)
	out, err := uc.AddItem(ctx, ann, 8, 1)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	out, err = uc.RemoveItem(ctx, ann, out.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	out, err = uc.Clear(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 0, st.CartSize(ann))
}

func TestView_TotalConPrecioActual(t *testing.T) {
	uc, st, ann, _ := setup(t)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, ann, 7, 2)
	require.NoError(t, err)

	p, err := st.Products().GetByID(ctx, 7)
	require.NoError(t, err)
	price := p.Price.Add(p.Price)
	require.NoError(t, st.Products().Update(ctx, 7, entity.ProductChanges{Price: &price}))

	out, err := uc.View(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "39.96", out.Total.StringFixed(2))
}
