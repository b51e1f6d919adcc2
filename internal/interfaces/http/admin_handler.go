package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
)

// AdminUserHandler gestión de usuarios (solo admin).
type AdminUserHandler struct {
	uc *usecase.UserUseCase
}

// NewAdminUserHandler construye el handler.
func NewAdminUserHandler(uc *usecase.UserUseCase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

// List GET /api/v1/admin/users?page=&limit=
func (h *AdminUserHandler) List(c *fiber.Ctx) error {
	var q dto.PageRequest
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// Get GET /api/v1/admin/users/:id
func (h *AdminUserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// UpdateRole PATCH /api/v1/admin/users/:id/role
func (h *AdminUserHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := mustIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateRoleRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateRole(c.UserContext(), actor.UserID, id, in.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}
