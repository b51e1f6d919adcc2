package repository

import (
	"context"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// CartRepository persistencia del carrito. Las operaciones por itemID filtran por
// el dueño en la propia consulta: un ítem ajeno se comporta como inexistente.
type CartRepository interface {
	// GetOrCreate es idempotente: como máximo un carrito por usuario.
	GetOrCreate(ctx context.Context, userID int64) (*entity.Cart, error)
	// LockByUser bloquea la fila del carrito hasta el fin de la transacción. (nil, nil) si no hay carrito.
	LockByUser(ctx context.Context, userID int64) (*entity.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]*entity.CartItem, error)
	// UpsertItem suma qty a la línea existente o la crea.
	UpsertItem(ctx context.Context, cartID, productID int64, qty int) error
	SetItemQuantity(ctx context.Context, userID, itemID int64, qty int) (bool, error)
	DeleteItem(ctx context.Context, userID, itemID int64) (bool, error)
	Clear(ctx context.Context, cartID int64) error
}
