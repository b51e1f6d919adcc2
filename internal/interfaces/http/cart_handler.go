package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/cart"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
)

// CartHandler carrito del usuario autenticado.
type CartHandler struct {
	uc *cart.CartUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *cart.CartUseCase) *CartHandler {
	return &CartHandler{uc: uc}
}

// View GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.View(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// AddItem POST /api/v1/cart. Inventario insuficiente aquí es 400 (chequeo previo).
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var in dto.AddCartItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.AddItem(c.UserContext(), id.UserID, in.ProductID, in.Quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return withStatus(err, fiber.StatusBadRequest)
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// UpdateItem PATCH /api/v1/cart/:itemId. Cantidad <= 0 elimina la línea.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return err
	}
	var in dto.UpdateCartItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateQuantity(c.UserContext(), id.UserID, itemID, in.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// RemoveItem DELETE /api/v1/cart/:itemId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return err
	}
	out, err := h.uc.RemoveItem(c.UserContext(), id.UserID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Clear DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Clear(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}
