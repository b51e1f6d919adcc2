// Package payment adapta el procesador de pagos (Stripe) al puerto payment.Gateway.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	apppayment "github.com/jhoicas/Tienda-api/internal/application/payment"
)

var _ apppayment.Gateway = (*StripeGateway)(nil)

// StripeGateway cliente de Stripe con su secreto de webhooks.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway construye el gateway. backends nil usa los de producción.
func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

// CreateIntent crea un payment intent con métodos automáticos. amount en centavos.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string, idempotencyKey string) (*apppayment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: crear payment intent: %w", err)
	}
	return toIntent(pi), nil
}

// GetIntent consulta un payment intent con su método de pago expandido.
func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*apppayment.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("payment_method")
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: consultar payment intent: %w", err)
	}
	return toIntent(pi), nil
}

// ParseWebhook verifica la firma Stripe-Signature y extrae el intent afectado.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*apppayment.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe: webhook: %w", err)
	}
	out := &apppayment.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err == nil {
			out.IntentID = pi.ID
		}
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *apppayment.Intent {
	in := &apppayment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Created:      time.Unix(pi.Created, 0).UTC(),
		Metadata:     pi.Metadata,
	}
	switch {
	case pi.PaymentMethod != nil && pi.PaymentMethod.Type != "":
		in.Method = string(pi.PaymentMethod.Type)
	case len(pi.PaymentMethodTypes) > 0:
		in.Method = pi.PaymentMethodTypes[0]
	}
	return in
}
