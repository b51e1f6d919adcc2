package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest referencia opcional a un pago ya realizado.
type CreateOrderRequest struct {
	PaymentIntentID *string `json:"payment_intent_id" validate:"omitempty,min=1,max=255"`
}

// UpdateOrderStatusRequest cambio de estado por un administrador.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	Force  bool   `json:"force"`
}

// OrderQuery filtros del listado de administración.
type OrderQuery struct {
	PageRequest
	Status   string `query:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	FromDate string `query:"fromDate"`
	ToDate   string `query:"toDate"`
}

// OrderItemResponse línea con precio congelado.
type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	UserName        string              `json:"user_name,omitempty"`
	UserEmail       string              `json:"user_email,omitempty"`
	Status          string              `json:"status"`
	Total           decimal.Decimal     `json:"total"`
	PaymentIntentID *string             `json:"payment_intent_id,omitempty"`
	Items           []OrderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
