package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tienda-api/internal/domain/repository"
)

var _ repository.InventoryLedger = (*InventoryLedger)(nil)

// InventoryLedger descuento condicional de inventario.
// Bajo READ COMMITTED el UPDATE toma el lock de la fila y reevalúa el predicado,
// así que dos descuentos concurrentes nunca dejan el inventario negativo.
type InventoryLedger struct {
	q Querier
}

// NewInventoryLedger construye el ledger. Pasar pool o tx (Querier).
func NewInventoryLedger(q Querier) *InventoryLedger {
	return &InventoryLedger{q: q}
}

// Decrement resta qty si inventory >= qty. true si se afectó exactamente una fila.
func (l *InventoryLedger) Decrement(ctx context.Context, productID int64, qty int) (bool, error) {
	const query = `
		UPDATE products SET inventory = inventory - $2, updated_at = now()
		WHERE id = $1 AND inventory >= $2`
	tag, err := l.q.Exec(ctx, query, productID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement inventory: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
