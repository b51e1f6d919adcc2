// Package payment integra el procesador de pagos con el carrito y los pedidos.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const metaUserID = "user_id"

var hundred = decimal.NewFromInt(100)

// PaymentUseCase crea intents, confirma pagos, procesa webhooks y emite comprobantes.
type PaymentUseCase struct {
	gateway  Gateway
	carts    repository.CartRepository
	orders   repository.OrderRepository
	checkout Checkout
	events   PaymentEvents
	renderer ReceiptRenderer
	currency string
	log      logger.Recorder
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	gateway Gateway,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	checkout Checkout,
	events PaymentEvents,
	renderer ReceiptRenderer,
	currency string,
	log logger.Recorder,
) *PaymentUseCase {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentUseCase{
		gateway:  gateway,
		carts:    carts,
		orders:   orders,
		checkout: checkout,
		events:   events,
		renderer: renderer,
		currency: strings.ToLower(currency),
		log:      log,
	}
}

// CreateIntent crea un intent por el total actual del carrito (en centavos).
func (uc *PaymentUseCase) CreateIntent(ctx context.Context, userID int64) (*dto.PaymentIntentResponse, error) {
	cart, err := uc.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := uc.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	total := entity.CartTotal(items)
	cents := total.Mul(hundred).IntPart()

	intent, err := uc.gateway.CreateIntent(ctx, cents, uc.currency,
		map[string]string{metaUserID: strconv.FormatInt(userID, 10)}, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	uc.log.Log("info", "payment intent creado", map[string]any{
		"user_id": userID, "payment_intent_id": intent.ID, "amount": cents,
	})
	return &dto.PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          total,
		Currency:        uc.currency,
	}, nil
}

// Confirm verifica que el intent pertenezca al usuario y esté cobrado, y crea el pedido.
// Confirmar dos veces el mismo intent devuelve el pedido ya creado.
func (uc *PaymentUseCase) Confirm(ctx context.Context, userID int64, intentID string) (*dto.OrderResponse, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.orders.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, domain.ErrPaymentMismatch
		}
		out := dto.NewOrderResponse(existing)
		return &out, nil
	}

	intent, err := uc.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	if intent.Metadata[metaUserID] != strconv.FormatInt(userID, 10) {
		uc.log.Log("warn", "intent de otro usuario", map[string]any{"user_id": userID, "payment_intent_id": intentID})
		return nil, domain.ErrPaymentMismatch
	}
	if intent.Status != StatusSucceeded {
		return nil, domain.ErrPaymentNotCompleted
	}
	return uc.checkout.Checkout(ctx, userID, &intent.ID)
}

// HandleWebhook procesa un evento firmado del procesador.
func (uc *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil {
		uc.log.Log("warn", "webhook con firma inválida", map[string]any{"error": err.Error()})
		return fmt.Errorf("%w: firma de webhook inválida", domain.ErrInvalidInput)
	}
	switch ev.Type {
	case EventSucceeded:
		return uc.events.ApplyPaymentEvent(ctx, ev.IntentID, true)
	case EventFailed:
		return uc.events.ApplyPaymentEvent(ctx, ev.IntentID, false)
	default:
		uc.log.Log("debug", "webhook ignorado", map[string]any{"event_id": ev.ID, "type": ev.Type})
		return nil
	}
}

// Receipt comprobante del pedido; solo el dueño o un admin.
// Si el procesador no responde se devuelve el comprobante sin el bloque de pago.
func (uc *PaymentUseCase) Receipt(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*dto.ReceiptResponse, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.UserID != requesterID && !isAdmin {
		return nil, domain.ErrForbidden
	}
	r := &dto.ReceiptResponse{
		OrderID:       o.ID,
		CustomerName:  o.UserName,
		CustomerEmail: o.UserEmail,
		Status:        o.Status,
		Items:         dto.NewOrderItemResponses(o.Items),
		Total:         o.Total,
		OrderDate:     o.CreatedAt,
	}
	if o.PaymentIntentID != nil {
		intent, err := uc.gateway.GetIntent(ctx, *o.PaymentIntentID)
		if err != nil {
			uc.log.Log("warn", "no se pudo consultar el pago", map[string]any{"order_id": o.ID, "error": err.Error()})
		} else {
			r.Payment = &dto.ReceiptPayment{
				ID:     intent.ID,
				Status: intent.Status,
				Amount: decimal.NewFromInt(intent.Amount).Div(hundred),
				Method: intent.Method,
				PaidAt: intent.Created,
			}
		}
	}
	return r, nil
}

// ReceiptPDF comprobante en PDF.
func (uc *PaymentUseCase) ReceiptPDF(ctx context.Context, orderID, requesterID int64, isAdmin bool) ([]byte, error) {
	r, err := uc.Receipt(ctx, orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.renderer.Render(r)
	if err != nil {
		return nil, fmt.Errorf("generar PDF: %w", err)
	}
	return pdf, nil
}
