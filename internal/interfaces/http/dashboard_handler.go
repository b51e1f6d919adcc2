package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/Tienda-api/internal/application/analytics"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
)

// DashboardHandler panel y reporte de ventas de administración.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary GET /api/v1/admin/dashboard
//
// Conteos de usuarios, productos y pedidos; ventas totales sin cancelados;
// productos con inventario bajo y los 5 pedidos más recientes.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(summary))
}

// SalesReport GET /api/v1/admin/sales-report?period=&startDate=&endDate=
func (h *DashboardHandler) SalesReport(c *fiber.Ctx) error {
	var q dto.SalesReportQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.SalesReport(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}
