// Package analytics contiene los casos de uso del panel de administración:
// resumen general y reporte de ventas.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardRecentOrders = 5  // pedidos en el widget "recientes"
	reportTopProducts     = 10 // productos en el ranking del reporte
	dateLayout            = "2006-01-02"
)

// DashboardUseCase genera el resumen del panel y el reporte de ventas.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardResponse.
//
// Seis consultas en paralelo; la primera que falla cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		users, products, orders, lowInventory int
		sales                                 decimal.Decimal
		recent                                []*entity.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = uc.analyticsRepo.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = uc.analyticsRepo.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = uc.analyticsRepo.CountOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		sales, err = uc.analyticsRepo.TotalSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		lowInventory, err = uc.analyticsRepo.CountLowInventory(gctx, entity.LowInventoryThreshold)
		return err
	})
	g.Go(func() (err error) {
		recent, err = uc.analyticsRepo.RecentOrders(gctx, dashboardRecentOrders)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &dto.DashboardResponse{
		TotalUsers:        users,
		TotalProducts:     products,
		TotalOrders:       orders,
		TotalSales:        sales.Round(2),
		LowInventoryCount: lowInventory,
		RecentOrders:      dto.NewOrderResponses(recent),
	}, nil
}

// SalesReport ventas agrupadas por periodo más el top de productos del rango.
// Sin fechas: desde el inicio de los registros hasta hoy. endDate es inclusivo.
func (uc *DashboardUseCase) SalesReport(ctx context.Context, q dto.SalesReportQuery) (*dto.SalesReportResponse, error) {
	period := strings.TrimSpace(q.Period)
	if period == "" {
		period = entity.PeriodMonthly
	}
	switch period {
	case entity.PeriodDaily, entity.PeriodWeekly, entity.PeriodMonthly, entity.PeriodYearly:
	default:
		return nil, domain.ErrInvalidInput
	}

	// ── Rango de fechas ────────────────────────────────────────────────────────
	from := time.Unix(0, 0).UTC()
	today := uc.now().UTC().Truncate(24 * time.Hour)
	to := today.AddDate(0, 0, 1)
	if s := strings.TrimSpace(q.StartDate); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		from = d
	}
	if s := strings.TrimSpace(q.EndDate); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		to = d.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return nil, domain.ErrInvalidInput
	}

	var (
		points []entity.SalesPoint
		top    []entity.TopProduct
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		points, err = uc.analyticsRepo.SalesByPeriod(gctx, period, from, to)
		return err
	})
	g.Go(func() (err error) {
		top, err = uc.analyticsRepo.TopProducts(gctx, from, to, reportTopProducts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}

	out := &dto.SalesReportResponse{
		Period:      period,
		StartDate:   from.Format(dateLayout),
		EndDate:     to.AddDate(0, 0, -1).Format(dateLayout),
		Sales:       make([]dto.SalesPointDTO, 0, len(points)),
		TopProducts: make([]dto.TopProductDTO, 0, len(top)),
	}
	for _, p := range points {
		out.Sales = append(out.Sales, dto.SalesPointDTO{Period: p.Period, OrderCount: p.OrderCount, Sales: p.Sales.Round(2)})
	}
	for _, p := range top {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ProductID: p.ProductID, Name: p.Name, UnitsSold: p.UnitsSold, Revenue: p.Revenue.Round(2),
		})
	}
	return out, nil
}
