package order

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// OrderUseCase consultas de pedidos y cambios de estado.
type OrderUseCase struct {
	orders repository.OrderRepository
	log    logger.Recorder
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orders repository.OrderRepository, log logger.Recorder) *OrderUseCase {
	return &OrderUseCase{orders: orders, log: log}
}

// Get devuelve un pedido si el solicitante es su dueño o es admin.
func (uc *OrderUseCase) Get(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*dto.OrderResponse, error) {
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
	out := dto.NewOrderResponse(o)
	return &out, nil
}

// ListMine pedidos del usuario, más recientes primero.
func (uc *OrderUseCase) ListMine(ctx context.Context, userID int64) ([]dto.OrderResponse, error) {
	list, err := uc.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewOrderResponses(list), nil
}

// ListAll listado de administración. toDate es inclusivo (se toma hasta el fin del día).
func (uc *OrderUseCase) ListAll(ctx context.Context, q dto.OrderQuery) (*dto.OrderListResponse, error) {
	q.DefaultPage()
	filter := entity.OrderFilter{Status: q.Status, Limit: q.Limit, Offset: q.Offset()}
	if q.Status != "" && !entity.IsValidStatus(q.Status) {
		return nil, domain.ErrInvalidInput
	}
	if s := strings.TrimSpace(q.FromDate); s != "" {
		from, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.FromDate = &from
	}
	if s := strings.TrimSpace(q.ToDate); s != "" {
		to, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		to = to.AddDate(0, 0, 1)
		filter.ToDate = &to
	}
	list, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.OrderListResponse{Items: dto.NewOrderResponses(list), Page: dto.NewPageResponse(q.PageRequest, total)}, nil
}

// UpdateStatus aplica la máquina de estados. force permite a un admin saltarse la validación.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actorID, orderID int64, status string, force bool) (*dto.OrderResponse, error) {
	if !entity.IsValidStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !force && !entity.CanTransition(o.Status, status) {
		return nil, domain.ErrInvalidStatusTransition
	}
	if err := uc.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	uc.log.Log("info", "estado de pedido actualizado", map[string]any{
		"actor_id": actorID, "order_id": orderID, "from": o.Status, "to": status, "force": force,
	})
	o.Status = status
	o.UpdatedAt = time.Now()
	out := dto.NewOrderResponse(o)
	return &out, nil
}

// ApplyPaymentEvent refleja en el pedido el resultado de un pago notificado por el procesador.
// Eventos sin pedido asociado o que no cambian el estado se ignoran.
func (uc *OrderUseCase) ApplyPaymentEvent(ctx context.Context, paymentIntentID string, succeeded bool) error {
	o, err := uc.orders.GetByPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	if o == nil {
		uc.log.Log("info", "evento de pago sin pedido", map[string]any{"payment_intent_id": paymentIntentID})
		return nil
	}
	target := entity.OrderCancelled
	if succeeded {
		target = entity.OrderProcessing
	}
	if !entity.CanTransition(o.Status, target) {
		return nil
	}
	if err := uc.orders.UpdateStatus(ctx, o.ID, target); err != nil {
		return err
	}
	uc.log.Log("info", "pedido actualizado por pago", map[string]any{
		"order_id": o.ID, "payment_intent_id": paymentIntentID, "to": target,
	})
	return nil
}
