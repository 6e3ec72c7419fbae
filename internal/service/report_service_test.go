package service

import (
	"context"
	"testing"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportEnv() (*financeEnv, ReportService) {
	env := newFinanceEnv()
	svc := NewReportService(env.saleRepo, env.expenseRepo, env.vehicleRepo, env.finance)
	return env, svc
}

func TestResolveQuickPeriod(t *testing.T) {
	now := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

	from, to, err := ResolveQuickPeriod(PeriodToday, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, *from, *to)

	from, _, err = ResolveQuickPeriod(PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC), *from)

	from, _, err = ResolveQuickPeriod(PeriodMonth, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *from)

	from, _, err = ResolveQuickPeriod(PeriodYear, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *from)

	from, to, err = ResolveQuickPeriod("", now)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = ResolveQuickPeriod("fortnight", now)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestGeneralReport_Totals(t *testing.T) {
	env, svc := newReportEnv()

	soldID := env.addVehicle(model.VehicleSold, "20000.00", "26000.00")
	env.addExpense(soldID, "800.00")
	env.addSale(soldID, "30000.00", "5000.00")

	otherID := env.addVehicle(model.VehicleSold, "10000.00", "13000.00")
	env.addSale(otherID, "12500.00", "0.00")

	report, err := svc.GeneralReport(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "42500.00", report.TotalSales)
	assert.Equal(t, "5000.00", report.TotalTradeIns)
	assert.Equal(t, "800.00", report.TotalExpenses)
	// 9200.00 + 2500.00
	assert.Equal(t, "11700.00", report.TotalProfit)
	assert.Len(t, report.Sales, 2)
}

func TestGeneralReport_SkipsUndefinedProfit(t *testing.T) {
	env, svc := newReportEnv()

	// A sale row whose vehicle is not marked sold contributes to sale totals
	// but has no defined realized profit.
	oddID := env.addVehicle(model.VehicleAvailable, "20000.00", "26000.00")
	env.addSale(oddID, "30000.00", "0.00")

	report, err := svc.GeneralReport(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "30000.00", report.TotalSales)
	assert.Equal(t, "0.00", report.TotalProfit)
}

func TestDashboard_CountsAndWindow(t *testing.T) {
	env, svc := newReportEnv()

	env.addVehicle(model.VehicleAvailable, "10000.00", "12000.00")
	env.addVehicle(model.VehicleInMaintenance, "11000.00", "14000.00")
	soldID := env.addVehicle(model.VehicleSold, "20000.00", "26000.00")
	env.addSale(soldID, "30000.00", "0.00")

	dashboard, err := svc.Dashboard(context.Background(), nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), dashboard.AvailableVehicles)
	assert.Equal(t, int64(1), dashboard.SoldVehicles)
	assert.Equal(t, "30000.00", dashboard.TotalSales)
	assert.Len(t, dashboard.RecentSales, 1)
}

func TestVehicleProfitReport_Rows(t *testing.T) {
	env, svc := newReportEnv()

	soldID := env.addVehicle(model.VehicleSold, "20000.00", "26000.00")
	env.addExpense(soldID, "800.00")
	env.addSale(soldID, "30000.00", "0.00")

	rows, err := svc.VehicleProfitReport(context.Background(), repository.SaleFilter{VehicleID: &soldID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "30000.00", row.SalePrice)
	assert.Equal(t, "800.00", row.TotalExpenses)
	require.NotNil(t, row.Profit)
	assert.Equal(t, "9200.00", *row.Profit)
	assert.False(t, row.HasTradeIn)
}

func TestVehicleProfitReport_EmptyFilterResult(t *testing.T) {
	env, svc := newReportEnv()
	soldID := env.addVehicle(model.VehicleSold, "20000.00", "26000.00")
	env.addSale(soldID, "30000.00", "0.00")

	other := uuid.New()
	rows, err := svc.VehicleProfitReport(context.Background(), repository.SaleFilter{VehicleID: &other})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
