package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// periodFormats formato to_char por periodo del reporte.
var periodFormats = map[string]string{
	entity.PeriodDaily:   `YYYY-MM-DD`,
	entity.PeriodWeekly:  `IYYY-"W"IW`,
	entity.PeriodMonthly: `YYYY-MM`,
	entity.PeriodYearly:  `YYYY`,
}

// AnalyticsRepo consultas de solo lectura para el panel de administración.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) count(ctx context.Context, what, query string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", what, err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users`)
}

func (r *AnalyticsRepo) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "products", `SELECT COUNT(*) FROM products`)
}

func (r *AnalyticsRepo) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, "orders", `SELECT COUNT(*) FROM orders`)
}

// CountLowInventory productos con inventory < threshold.
func (r *AnalyticsRepo) CountLowInventory(ctx context.Context, threshold int) (int, error) {
	return r.count(ctx, "low inventory", `SELECT COUNT(*) FROM products WHERE inventory < $1`, threshold)
}

// TotalSales suma de pedidos no cancelados.
func (r *AnalyticsRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> 'cancelled'`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total sales: %w", err)
	}
	return total, nil
}

// RecentOrders últimos pedidos con datos del cliente (sin líneas).
func (r *AnalyticsRepo) RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, orderSelect+` ORDER BY o.created_at DESC, o.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
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

// SalesByPeriod agrupa ventas en [from, to) por etiqueta de periodo en UTC.
func (r *AnalyticsRepo) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]entity.SalesPoint, error) {
	format, ok := periodFormats[period]
	if !ok {
		return nil, fmt.Errorf("%w: periodo %q", domain.ErrInvalidInput, period)
	}
	const query = `
		SELECT to_char(created_at AT TIME ZONE 'UTC', $1) AS period,
		       COUNT(*)                                   AS order_count,
		       COALESCE(SUM(total), 0)                    AS sales
		FROM orders
		WHERE status <> 'cancelled'
		  AND created_at >= $2 AND created_at < $3
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.q.Query(ctx, query, format, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by period: %w", err)
	}
	defer rows.Close()
	var out []entity.SalesPoint
	for rows.Next() {
		var p entity.SalesPoint
		if err := rows.Scan(&p.Period, &p.OrderCount, &p.Sales); err != nil {
			return nil, fmt.Errorf("scan sales point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopProducts productos con más unidades vendidas en [from, to).
func (r *AnalyticsRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.TopProduct, error) {
	const query = `
		SELECT p.id, p.name,
		       SUM(oi.quantity)            AS units_sold,
		       SUM(oi.quantity * oi.price) AS revenue
		FROM order_items oi
		JOIN orders   o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status <> 'cancelled'
		  AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY p.id, p.name
		ORDER BY units_sold DESC, revenue DESC, p.id
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	var out []entity.TopProduct
	for rows.Next() {
		var t entity.TopProduct
		if err := rows.Scan(&t.ProductID, &t.Name, &t.UnitsSold, &t.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
