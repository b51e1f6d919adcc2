package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart carrito único por usuario; se crea la primera vez que se consulta.
type Cart struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem línea del carrito unida con los datos actuales del producto.
// Price e Inventory son los valores vigentes del producto, no una copia congelada.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	Name      string
	Price     decimal.Decimal
	Inventory int
	Image     string
}

// Subtotal precio actual por cantidad.
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal suma de subtotales redondeada a centavos.
func CartTotal(items []*CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(2)
}
