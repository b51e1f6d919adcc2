package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderSelect = `
	SELECT o.id, o.user_id, o.status, o.total, o.payment_intent_id, o.created_at, o.updated_at,
	       u.name, u.email
	FROM orders o
	JOIN users u ON u.id = o.user_id`

// OrderRepo pedidos y sus líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera del pedido. payment_intent_id repetido devuelve ErrConflict.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.Status == "" {
		o.Status = entity.OrderPending
	}
	query := `
		INSERT INTO orders (user_id, status, total, payment_intent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, o.UserID, o.Status, o.Total, o.PaymentIntentID).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// AddItem inserta una línea con el precio congelado.
func (r *OrderRepo) AddItem(ctx context.Context, it *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, it.OrderID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID pedido con líneas y datos del cliente. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.id = $1`, id)
}

// GetByPaymentIntent pedido asociado al intent de pago. (nil, nil) si no existe.
func (r *OrderRepo) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*entity.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.payment_intent_id = $1`, paymentIntentID)
}

func (r *OrderRepo) getOne(ctx context.Context, query string, arg any) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser pedidos del usuario, más recientes primero.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	list, err := r.query(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// List listado de administración con filtros por estado y rango [FromDate, ToDate).
func (r *OrderRepo) List(ctx context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add(`o.status = ?`, f.Status)
	}
	if f.FromDate != nil {
		w.add(`o.created_at >= ?`, *f.FromDate)
	}
	if f.ToDate != nil {
		w.add(`o.created_at < ?`, *f.ToDate)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	query := orderSelect + w.sql() +
		` ORDER BY o.created_at DESC, o.id DESC LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	list, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateStatus cambia el estado. ErrNotFound si el pedido no existe.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt,
		&o.UserName, &o.UserEmail)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// loadItems carga las líneas de varios pedidos en una sola consulta.
func (r *OrderRepo) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = []*entity.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	const query = `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, &it)
		}
	}
	return rows.Err()
}
