package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrUserNotFound            = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists      = errors.New("el email ya está registrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrInvalidCredentials      = errors.New("credenciales inválidas")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrInsufficientStock       = errors.New("inventario insuficiente")
	ErrEmptyCart               = errors.New("el carrito está vacío")
	ErrInvalidStatusTransition = errors.New("transición de estado no permitida")
	ErrPaymentNotCompleted     = errors.New("el pago no se ha completado")
	ErrPaymentMismatch         = errors.New("el pago no corresponde al usuario")
)

// InsufficientInventoryError indica qué producto no tenía existencias al confirmar el pedido.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientInventoryError struct {
	ProductID int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventario insuficiente para el producto %d", e.ProductID)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientStock }
