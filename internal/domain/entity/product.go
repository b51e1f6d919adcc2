package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowInventoryThreshold por debajo de este valor el producto cuenta como "bajo inventario".
const LowInventoryThreshold = 10

// Product representa un artículo del catálogo.
// Inventory nunca es negativo: lo garantiza el ledger y el CHECK de la tabla.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Inventory   int
	Category    string
	Images      []string // URLs en orden de presentación
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductChanges cambios parciales de un producto; nil conserva el valor guardado.
// Inventory solo se escribe cuando viene explícito, así una edición de catálogo
// no pisa los descuentos que el ledger hizo en paralelo.
type ProductChanges struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Inventory   *int
	Category    *string
	Images      []string // nil conserva las imágenes; vacío las elimina
}

// ProductFilter criterios del listado público de productos.
type ProductFilter struct {
	Name     string // coincidencia parcial, sin distinguir mayúsculas
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}
