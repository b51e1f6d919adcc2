package dto

import "github.com/shopspring/decimal"

// DashboardResponse respuesta de GET /api/v1/admin/dashboard.
type DashboardResponse struct {
	TotalUsers        int             `json:"total_users"`
	TotalProducts     int             `json:"total_products"`
	TotalOrders       int             `json:"total_orders"`
	TotalSales        decimal.Decimal `json:"total_sales"` // excluye pedidos cancelados
	LowInventoryCount int             `json:"low_inventory_count"`
	RecentOrders      []OrderResponse `json:"recent_orders"`
}

// SalesReportQuery parámetros del reporte; fechas en formato 2006-01-02.
type SalesReportQuery struct {
	Period    string `query:"period" validate:"omitempty,oneof=daily weekly monthly yearly"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// SalesPointDTO ventas de un periodo.
type SalesPointDTO struct {
	Period     string          `json:"period"`
	OrderCount int             `json:"order_count"`
	Sales      decimal.Decimal `json:"sales"`
}

// TopProductDTO producto más vendido.
type TopProductDTO struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesReportResponse reporte de ventas por periodo.
type SalesReportResponse struct {
	Period      string          `json:"period"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Sales       []SalesPointDTO `json:"sales"`
	TopProducts []TopProductDTO `json:"top_products"`
}
