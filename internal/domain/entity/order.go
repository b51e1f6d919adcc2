package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// orderRank posición en el flujo pending → processing → shipped → delivered.
var orderRank = map[string]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// IsValidStatus indica si s es un estado conocido.
func IsValidStatus(s string) bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := orderRank[s]
	return ok
}

// IsTerminal delivered y cancelled no admiten más cambios salvo forzados.
func IsTerminal(s string) bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition valida el avance de estado. Solo hacia adelante (se permite saltar pasos)
// y cancelled desde cualquier estado no terminal.
func CanTransition(from, to string) bool {
	if !IsValidStatus(from) || !IsValidStatus(to) || from == to || IsTerminal(from) {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	return orderRank[to] > orderRank[from]
}

// Order pedido inmutable salvo el estado. Total se congela al confirmar.
type Order struct {
	ID              int64
	UserID          int64
	Status          string
	Total           decimal.Decimal
	PaymentIntentID *string
	Items           []*OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Datos del cliente, solo en consultas de administración y recibos.
	UserName  string
	UserEmail string
}

// OrderItem línea con el precio vigente en el momento de la compra.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// Subtotal precio congelado por cantidad.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderFilter criterios del listado de administración.
type OrderFilter struct {
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
