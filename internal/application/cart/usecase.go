// Package cart contiene los casos de uso del carrito de compras.
package cart

import (
	"context"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
)

// CartUseCase mantiene el carrito del usuario hasta el checkout.
// La verificación de inventario al agregar es orientativa; la garantía real la da el ledger.
type CartUseCase struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(carts repository.CartRepository, products repository.ProductRepository) *CartUseCase {
	return &CartUseCase{carts: carts, products: products}
}

// View devuelve el carrito con el total recalculado con precios actuales.
func (uc *CartUseCase) View(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := uc.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	out := dto.NewCartResponse(cart, items)
	return &out, nil
}

// AddItem suma qty a la línea del producto (o la crea).
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID int64, qty int) (*dto.CartResponse, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Inventory < qty {
		return nil, &domain.InsufficientInventoryError{ProductID: productID}
	}
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := uc.carts.UpsertItem(ctx, cart.ID, productID, qty); err != nil {
		return nil, err
	}
	return uc.View(ctx, userID)
}

// UpdateQuantity fija la cantidad de una línea propia; qty <= 0 la elimina.
// Una línea de otro usuario se trata como inexistente.
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*dto.CartResponse, error) {
	var (
		ok  bool
		err error
	)
	if qty <= 0 {
		ok, err = uc.carts.DeleteItem(ctx, userID, itemID)
	} else {
		ok, err = uc.carts.SetItemQuantity(ctx, userID, itemID, qty)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return uc.View(ctx, userID)
}

// RemoveItem elimina una línea propia.
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, itemID int64) (*dto.CartResponse, error) {
	ok, err := uc.carts.DeleteItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return uc.View(ctx, userID)
}

// Clear vacía el carrito.
func (uc *CartUseCase) Clear(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := uc.carts.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	out := dto.NewCartResponse(cart, nil)
	return &out, nil
}
