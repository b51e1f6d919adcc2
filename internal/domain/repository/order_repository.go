package repository

import (
	"context"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// OrderRepository persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	AddItem(ctx context.Context, item *entity.OrderItem) error
	// GetByID incluye las líneas y los datos del cliente. (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error)
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
