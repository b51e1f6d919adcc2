package order

import (
	"context"
	"errors"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// CheckoutUseCase convierte el carrito en un pedido en una sola transacción:
// pedido + líneas + descuento de inventario + carrito vacío, o ningún cambio.
type CheckoutUseCase struct {
	txRunner CheckoutTxRunner
	log      logger.Recorder
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(txRunner CheckoutTxRunner, log logger.Recorder) *CheckoutUseCase {
	return &CheckoutUseCase{txRunner: txRunner, log: log}
}

// Checkout crea el pedido del usuario a partir de su carrito.
// paymentIntentID es opcional y queda asociado al pedido.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, userID int64, paymentIntentID *string) (*dto.OrderResponse, error) {
	var order *entity.Order

	err := uc.txRunner.RunCheckout(ctx, func(
		carts repository.CartRepository,
		orders repository.OrderRepository,
		ledger repository.InventoryLedger,
	) error {
		// 1) Bloquear el carrito (serializa checkouts del mismo usuario) y leer líneas con precios vigentes.
		cart, err := carts.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrEmptyCart
		}
		items, err := carts.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		// 2) Total con los precios del momento.
		o := &entity.Order{
			UserID:          userID,
			Status:          entity.OrderPending,
			Total:           entity.CartTotal(items),
			PaymentIntentID: paymentIntentID,
		}

		// 3) Cabecera.
		if err := orders.Create(ctx, o); err != nil {
			return err
		}

		// 4) Líneas con precio congelado y descuento condicional de inventario.
		// Si algún producto no alcanza, se retorna y la transacción completa se revierte.
		for _, it := range items {
			line := &entity.OrderItem{
				OrderID:     o.ID,
				ProductID:   it.ProductID,
				ProductName: it.Name,
				Quantity:    it.Quantity,
				Price:       it.Price,
			}
			if err := orders.AddItem(ctx, line); err != nil {
				return err
			}
			ok, err := ledger.Decrement(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.InsufficientInventoryError{ProductID: it.ProductID}
			}
			o.Items = append(o.Items, line)
		}

		// 5) Vaciar carrito.
		if err := carts.Clear(ctx, cart.ID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		var inv *domain.InsufficientInventoryError
		if errors.As(err, &inv) {
			uc.log.Log("warn", "checkout sin inventario", map[string]any{"user_id": userID, "product_id": inv.ProductID})
		}
		return nil, err
	}

	uc.log.Log("info", "pedido creado", map[string]any{
		"user_id": userID, "order_id": order.ID, "total": order.Total.StringFixed(2),
	})
	out := dto.NewOrderResponse(order)
	return &out, nil
}
