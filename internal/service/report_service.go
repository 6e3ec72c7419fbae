package service

import (
	"context"
	"fmt"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// Quick period selectors for the dashboard.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

type DashboardResponse struct {
	AvailableVehicles int64          `json:"available_vehicles"`
	SoldVehicles      int64          `json:"sold_vehicles"`
	TotalSales        string         `json:"total_sales"`
	TotalExpenses     string         `json:"total_expenses"`
	TotalProfit       string         `json:"total_profit"`
	RecentSales       []SaleResponse `json:"recent_sales"`
	RecentVehicles    []VehicleSummary `json:"recent_vehicles"`
	From              *string        `json:"from,omitempty"`
	To                *string        `json:"to,omitempty"`
}

// VehicleSummary is the light vehicle shape used in report payloads, without
// the derived financials the full response carries.
type VehicleSummary struct {
	ID        string `json:"id"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Year      int    `json:"year"`
	Plate     string `json:"plate"`
	ListPrice string `json:"list_price"`
	Status    string `json:"status"`
}

type GeneralReportResponse struct {
	TotalSales    string         `json:"total_sales"`
	TotalTradeIns string         `json:"total_trade_ins"`
	TotalExpenses string         `json:"total_expenses"`
	TotalProfit   string         `json:"total_profit"`
	Sales         []SaleResponse `json:"sales"`
}

type VehicleProfitRow struct {
	Vehicle       VehicleSummary `json:"vehicle"`
	CustomerName  string         `json:"customer_name"`
	PurchasePrice string         `json:"purchase_price"`
	SalePrice     string         `json:"sale_price"`
	TotalExpenses string         `json:"total_expenses"`
	Profit        *string        `json:"profit"` // null when undefined
	SaleDate      string         `json:"sale_date"`
	HasTradeIn    bool           `json:"has_trade_in"`
}

// --- Interface ---

// ReportService rolls sales and expenses up over date windows. A pure
// consumer of the calculator and the store's filtering.
type ReportService interface {
	Dashboard(ctx context.Context, from, to *time.Time, quickPeriod string) (DashboardResponse, error)
	GeneralReport(ctx context.Context, from, to *time.Time) (GeneralReportResponse, error)
	VehicleProfitReport(ctx context.Context, filter repository.SaleFilter) ([]VehicleProfitRow, error)
}

type reportService struct {
	saleRepo    repository.SaleRepository
	expenseRepo repository.ExpenseRepository
	vehicleRepo repository.VehicleRepository
	finance     FinanceService
}

func NewReportService(
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	vehicleRepo repository.VehicleRepository,
	finance FinanceService,
) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		vehicleRepo: vehicleRepo,
		finance:     finance,
	}
}

// --- Implementation ---

// ResolveQuickPeriod maps a quick period name onto a concrete date window
// ending today. Explicit from/to win over the quick period.
func ResolveQuickPeriod(quickPeriod string, now time.Time) (*time.Time, *time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var from time.Time
	switch quickPeriod {
	case "":
		return nil, nil, nil
	case PeriodToday:
		from = today
	case PeriodWeek:
		from = today.AddDate(0, 0, -7)
	case PeriodMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, nil, apperror.Validationf("period must be one of: today, week, month, year")
	}
	return &from, &today, nil
}

func (s *reportService) Dashboard(ctx context.Context, from, to *time.Time, quickPeriod string) (DashboardResponse, error) {
	if from == nil && to == nil && quickPeriod != "" {
		var err error
		from, to, err = ResolveQuickPeriod(quickPeriod, time.Now())
		if err != nil {
			return DashboardResponse{}, err
		}
	}
	filter := repository.SaleFilter{From: from, To: to}

	available, err := s.vehicleRepo.CountByStatus(ctx, model.VehicleAvailable)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to count available vehicles: %w", err)
	}
	sold, err := s.vehicleRepo.CountByStatus(ctx, model.VehicleSold)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to count sold vehicles: %w", err)
	}
	totalSales, err := s.saleRepo.SumSalePrices(ctx, filter)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to sum sales: %w", err)
	}
	totalExpenses, err := s.expenseRepo.SumByDateRange(ctx, from, to)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to sum expenses: %w", err)
	}
	totalProfit, err := s.sumRealizedProfit(ctx, filter)
	if err != nil {
		return DashboardResponse{}, err
	}

	recentSales, err := s.saleRepo.ListRecent(ctx, filter, 5)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to fetch recent sales: %w", err)
	}
	recentVehicles, err := s.vehicleRepo.ListRecentByStatus(ctx, model.VehicleAvailable, 5)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to fetch recent vehicles: %w", err)
	}

	resp := DashboardResponse{
		AvailableVehicles: available,
		SoldVehicles:      sold,
		TotalSales:        totalSales.StringFixed(2),
		TotalExpenses:     totalExpenses.StringFixed(2),
		TotalProfit:       totalProfit.StringFixed(2),
	}
	for i := range recentSales {
		resp.RecentSales = append(resp.RecentSales, toSaleResponse(&recentSales[i]))
	}
	for i := range recentVehicles {
		resp.RecentVehicles = append(resp.RecentVehicles, toVehicleSummary(&recentVehicles[i]))
	}
	if from != nil {
		str := from.Format(dateLayout)
		resp.From = &str
	}
	if to != nil {
		str := to.Format(dateLayout)
		resp.To = &str
	}
	return resp, nil
}

func (s *reportService) GeneralReport(ctx context.Context, from, to *time.Time) (GeneralReportResponse, error) {
	filter := repository.SaleFilter{From: from, To: to}

	totalSales, err := s.saleRepo.SumSalePrices(ctx, filter)
	if err != nil {
		return GeneralReportResponse{}, fmt.Errorf("failed to sum sales: %w", err)
	}
	totalTradeIns, err := s.saleRepo.SumTradeInValues(ctx, filter)
	if err != nil {
		return GeneralReportResponse{}, fmt.Errorf("failed to sum trade-ins: %w", err)
	}
	totalExpenses, err := s.expenseRepo.SumByDateRange(ctx, from, to)
	if err != nil {
		return GeneralReportResponse{}, fmt.Errorf("failed to sum expenses: %w", err)
	}
	totalProfit, err := s.sumRealizedProfit(ctx, filter)
	if err != nil {
		return GeneralReportResponse{}, err
	}

	sales, err := s.saleRepo.ListByFilter(ctx, filter)
	if err != nil {
		return GeneralReportResponse{}, fmt.Errorf("failed to fetch sales: %w", err)
	}

	resp := GeneralReportResponse{
		TotalSales:    totalSales.StringFixed(2),
		TotalTradeIns: totalTradeIns.StringFixed(2),
		TotalExpenses: totalExpenses.StringFixed(2),
		TotalProfit:   totalProfit.StringFixed(2),
	}
	for i := range sales {
		resp.Sales = append(resp.Sales, toSaleResponse(&sales[i]))
	}
	return resp, nil
}

func (s *reportService) VehicleProfitReport(ctx context.Context, filter repository.SaleFilter) ([]VehicleProfitRow, error) {
	sales, err := s.saleRepo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	rows := make([]VehicleProfitRow, 0, len(sales))
	for i := range sales {
		sale := &sales[i]
		row := VehicleProfitRow{
			SalePrice:  sale.SalePrice.StringFixed(2),
			SaleDate:   sale.SaleDate.Format(dateLayout),
			HasTradeIn: sale.TradeInVehicleID != nil,
		}
		if sale.Customer != nil {
			row.CustomerName = sale.Customer.Name
		}
		if sale.Vehicle != nil {
			row.Vehicle = toVehicleSummary(sale.Vehicle)
			row.PurchasePrice = sale.Vehicle.PurchasePrice.StringFixed(2)
		}

		total, sumErr := s.expenseRepo.SumByVehicle(ctx, sale.VehicleID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to sum expenses: %w", sumErr)
		}
		row.TotalExpenses = total.StringFixed(2)

		profit, profitErr := s.finance.RealizedProfit(ctx, sale.VehicleID)
		if profitErr != nil {
			return nil, profitErr
		}
		if profit != nil {
			str := profit.StringFixed(2)
			row.Profit = &str
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sumRealizedProfit totals realized profit over the sales in range,
// skipping vehicles whose profit is undefined.
func (s *reportService) sumRealizedProfit(ctx context.Context, filter repository.SaleFilter) (decimal.Decimal, error) {
	sales, err := s.saleRepo.ListByFilter(ctx, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch sales: %w", err)
	}
	total := decimal.Zero
	for i := range sales {
		profit, profitErr := s.finance.RealizedProfit(ctx, sales[i].VehicleID)
		if profitErr != nil {
			return decimal.Zero, profitErr
		}
		if profit != nil {
			total = total.Add(*profit)
		}
	}
	return total, nil
}

func toVehicleSummary(v *model.Vehicle) VehicleSummary {
	return VehicleSummary{
		ID:        v.ID.String(),
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Plate:     v.Plate,
		ListPrice: v.ListPrice.StringFixed(2),
		Status:    v.Status,
	}
}
