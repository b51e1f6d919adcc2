package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntentResponse datos que el cliente necesita para completar el pago.
type PaymentIntentResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// ConfirmPaymentRequest confirma un pago y crea el pedido.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

// ReceiptResponse comprobante de un pedido pagado.
type ReceiptResponse struct {
	OrderID       int64               `json:"order_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	Items         []OrderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	OrderDate     time.Time           `json:"order_date"`
	Payment       *ReceiptPayment     `json:"payment,omitempty"`
}

// ReceiptPayment detalle del pago consultado al procesador.
type ReceiptPayment struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	PaidAt time.Time       `json:"paid_at"`
}
