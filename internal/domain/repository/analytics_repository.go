package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AnalyticsRepository define las consultas de lectura del panel de administración.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)

	// TotalSales suma los totales de pedidos no cancelados.
	TotalSales(ctx context.Context) (decimal.Decimal, error)

	// CountLowInventory productos con inventario por debajo de threshold.
	CountLowInventory(ctx context.Context, threshold int) (int, error)

	// RecentOrders últimos pedidos con nombre y email del cliente.
	RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error)

	// ── Reporte de ventas ─────────────────────────────────────────────────────

	// SalesByPeriod agrupa pedidos no cancelados en [from, to) por daily|weekly|monthly|yearly.
	SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]entity.SalesPoint, error)

	// TopProducts los `limit` productos con más unidades vendidas en [from, to).
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.TopProduct, error)
}
