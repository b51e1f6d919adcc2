package payment

import (
	"context"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
)

// Estado de un intent cobrado.
const StatusSucceeded = "succeeded"

// Eventos de webhook que modifican pedidos.
const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

// Intent vista mínima de un payment intent del procesador.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // centavos
	Currency     string
	Method       string
	Created      time.Time
	Metadata     map[string]string
}

// WebhookEvent evento ya verificado.
type WebhookEvent struct {
	ID       string
	Type     string
	IntentID string
}

// Gateway puerto hacia el procesador de pagos.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string, idempotencyKey string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// ParseWebhook verifica la firma del payload; error si no es auténtico.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// ReceiptRenderer genera la representación imprimible del comprobante.
type ReceiptRenderer interface {
	Render(receipt *dto.ReceiptResponse) ([]byte, error)
}

// Checkout crea el pedido a partir del carrito.
type Checkout interface {
	Checkout(ctx context.Context, userID int64, paymentIntentID *string) (*dto.OrderResponse, error)
}

// PaymentEvents aplica el resultado de un pago a su pedido.
type PaymentEvents interface {
	ApplyPaymentEvent(ctx context.Context, paymentIntentID string, succeeded bool) error
}
