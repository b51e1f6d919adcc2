package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsRepository implementación mock de AnalyticsRepository.
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CountProducts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CountOrders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAnalyticsRepository) CountLowInventory(ctx context.Context, threshold int) (int, error) {
	args := m.Called(ctx, threshold)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *MockAnalyticsRepository) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]entity.SalesPoint, error) {
	args := m.Called(ctx, period, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SalesPoint), args.Error(1)
}

func (m *MockAnalyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.TopProduct, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TopProduct), args.Error(1)
}

func TestGetSummary(t *testing.T) {
	repo := &MockAnalyticsRepository{}
	repo.On("CountUsers", mock.Anything).Return(4, nil)
	repo.On("CountProducts", mock.Anything).Return(12, nil)
	repo.On("CountOrders", mock.Anything).Return(3, nil)
	repo.On("TotalSales", mock.Anything).Return(decimal.RequireFromString("59.94"), nil)
	repo.On("CountLowInventory", mock.Anything, entity.LowInventoryThreshold).Return(2, nil)
	repo.On("RecentOrders", mock.Anything, 5).Return([]*entity.Order{{ID: 3, Status: entity.OrderPending}}, nil)

	out, err := NewDashboardUseCase(repo).GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, out.TotalUsers)
	assert.Equal(t, 12, out.TotalProducts)
	assert.Equal(t, 3, out.TotalOrders)
	assert.Equal(t, "59.94", out.TotalSales.StringFixed(2))
	assert.Equal(t, 2, out.LowInventoryCount)
	require.Len(t, out.RecentOrders, 1)
	repo.AssertExpectations(t)
}

func TestGetSummary_PropagaError(t *testing.T) {
	repo := &MockAnalyticsRepository{}
	boom := errors.New("db caída")
	repo.On("CountUsers", mock.Anything).Return(0, boom)
	repo.On("CountProducts", mock.Anything).Return(0, nil)
	repo.On("CountOrders", mock.Anything).Return(0, nil)
	repo.On("TotalSales", mock.Anything).Return(decimal.Zero, nil)
	repo.On("CountLowInventory", mock.Anything, mock.Anything).Return(0, nil)
	repo.On("RecentOrders", mock.Anything, mock.Anything).Return(nil, nil)

	_, err := NewDashboardUseCase(repo).GetSummary(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSalesReport_Rango(t *testing.T) {
	repo := &MockAnalyticsRepository{}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo.On("SalesByPeriod", mock.Anything, entity.PeriodDaily, from, to).
		Return([]entity.SalesPoint{{Period: "2026-01-05", OrderCount: 2, Sales: decimal.RequireFromString("30.5")}}, nil)
	repo.On("TopProducts", mock.Anything, from, to, 10).
		Return([]entity.TopProduct{{ProductID: 7, Name: "Taza", UnitsSold: 4, Revenue: decimal.RequireFromString("39.96")}}, nil)

	out, err := NewDashboardUseCase(repo).SalesReport(context.Background(), dto.SalesReportQuery{
		Period: "daily", StartDate: "2026-01-01", EndDate: "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", out.StartDate)
	assert.Equal(t, "2026-01-31", out.EndDate)
	require.Len(t, out.Sales, 1)
	assert.Equal(t, "30.50", out.Sales[0].Sales.StringFixed(2))
	require.Len(t, out.TopProducts, 1)
	assert.Equal(t, int64(7), out.TopProducts[0].ProductID)
	repo.AssertExpectations(t)
}

func TestSalesReport_PorDefectoMensualHastaHoy(t *testing.T) {
	repo := &MockAnalyticsRepository{}
	uc := NewDashboardUseCase(repo)
	uc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	repo.On("SalesByPeriod", mock.Anything, entity.PeriodMonthly, time.Unix(0, 0).UTC(), to).Return([]entity.SalesPoint{}, nil)
	repo.On("TopProducts", mock.Anything, time.Unix(0, 0).UTC(), to, 10).Return([]entity.TopProduct{}, nil)

	out, err := uc.SalesReport(context.Background(), dto.SalesReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodMonthly, out.Period)
	assert.Equal(t, "2026-03-10", out.EndDate)
}

func TestSalesReport_Validaciones(t *testing.T) {
	uc := NewDashboardUseCase(&MockAnalyticsRepository{})
	ctx := context.Background()

	_, err := uc.SalesReport(ctx, dto.SalesReportQuery{Period: "hourly"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SalesReport(ctx, dto.SalesReportQuery{StartDate: "01/01/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SalesReport(ctx, dto.SalesReportQuery{StartDate: "2026-02-01", EndDate: "2026-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
