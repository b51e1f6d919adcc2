package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// errorMapping traduce errores de dominio a HTTP. El orden importa: se usa el primero que coincide.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrEmptyCart, fiber.StatusBadRequest, "EMPTY_CART"},
	{domain.ErrInvalidStatusTransition, fiber.StatusBadRequest, "INVALID_STATUS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrPaymentNotCompleted, fiber.StatusPaymentRequired, "PAYMENT_NOT_COMPLETED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrPaymentMismatch, fiber.StatusForbidden, "PAYMENT_MISMATCH"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_INVENTORY"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// statusError fija el status HTTP de un error de dominio para un endpoint concreto
// (p. ej. inventario insuficiente es 400 al agregar al carrito y 409 al confirmar).
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func withStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	return &statusError{status: status, err: err}
}

// mapError devuelve status, código y si el mensaje del error puede mostrarse al cliente.
func mapError(err error) (int, string, bool) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			status := m.status
			var se *statusError
			if errors.As(err, &se) {
				status = se.status
			}
			return status, m.code, true
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return fe.Code, "NOT_FOUND", true
		case fiber.StatusTooManyRequests:
			return fe.Code, "RATE_LIMITED", true
		case fiber.StatusRequestEntityTooLarge:
			return fe.Code, "BODY_TOO_LARGE", true
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, "BAD_REQUEST", true
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL", false
}

// ErrorHandler centraliza la respuesta de error de todos los handlers.
// exposeInternal muestra el detalle de los 500 (solo desarrollo).
func ErrorHandler(log logger.Recorder, exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code, public := mapError(err)
		msg := err.Error()
		if !public {
			log.Log("error", "error interno", map[string]any{
				"path": c.Path(), "method": c.Method(), "error": err.Error(),
				"request_id": requestID(c),
			})
			if !exposeInternal {
				msg = "error interno del servidor"
			}
		}
		return c.Status(status).JSON(dto.Fail(code, msg))
	}
}
