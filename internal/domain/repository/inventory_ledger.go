package repository

import "context"

// InventoryLedger único camino de escritura del inventario durante la confirmación de pedidos.
type InventoryLedger interface {
	// Decrement resta qty solo si hay existencias suficientes; false si no las había
	// o el producto no existe. Nunca deja el inventario negativo.
	Decrement(ctx context.Context, productID int64, qty int) (bool, error)
}
