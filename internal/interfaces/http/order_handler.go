package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/application/order"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// OrderHandler checkout y consulta de pedidos.
type OrderHandler struct {
	checkout *order.CheckoutUseCase
	uc       *order.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(checkout *order.CheckoutUseCase, uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{checkout: checkout, uc: uc}
}

// Create godoc
// @Summary      Confirmar el carrito como pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  false  "Referencia de pago opcional"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var in dto.CreateOrderRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.checkout.Checkout(c.UserContext(), id.UserID, in.PaymentIntentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// ListMine GET /api/v1/orders
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListMine(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Get GET /api/v1/orders/:id (dueño o admin).
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), orderID, id.UserID, id.Role == entity.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// ListAll GET /api/v1/orders/admin/all?status=&fromDate=&toDate=&page=&limit=
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	var q dto.OrderQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.ListAll(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// UpdateStatus PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateOrderStatusRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), id.UserID, orderID, in.Status, in.Force)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}
