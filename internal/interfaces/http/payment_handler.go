package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/application/payment"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// PaymentHandler intents, confirmación, webhook y comprobantes.
type PaymentHandler struct {
	uc *payment.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// CreateIntent POST /api/v1/payments/create-intent (total del carrito en centavos).
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.CreateIntent(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Confirm POST /api/v1/payments/confirm: el intent debe estar cobrado; luego se hace el checkout.
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var in dto.ConfirmPaymentRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Confirm(c.UserContext(), id.UserID, in.PaymentIntentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Webhook POST /api/v1/payments/webhook. Público; la autenticidad la da la firma.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if err := h.uc.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}

// Receipt GET /api/v1/payments/receipt/:orderId[?format=pdf]
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "orderId")
	if err != nil {
		return err
	}
	isAdmin := id.Role == entity.RoleAdmin

	if c.Query("format") == "pdf" {
		pdf, err := h.uc.ReceiptPDF(c.UserContext(), orderID, id.UserID, isAdmin)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="recibo-`+strconv.FormatInt(orderID, 10)+`.pdf"`)
		return c.Send(pdf)
	}

	out, err := h.uc.Receipt(c.UserContext(), orderID, id.UserID, isAdmin)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}
