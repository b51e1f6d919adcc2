package order

import (
	"context"

	"github.com/jhoicas/Tienda-api/internal/domain/repository"
)

// CheckoutTxRunner ejecuta fn dentro de una transacción con los repositorios ligados a ella.
// Si fn devuelve error (o hay pánico) se hace rollback; si no, commit.
type CheckoutTxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		carts repository.CartRepository,
		orders repository.OrderRepository,
		ledger repository.InventoryLedger,
	) error) error
}
