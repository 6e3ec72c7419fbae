package service

import (
	"context"
	"errors"
	"fmt"

	"dealership/internal/model"
	"dealership/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceService derives per-vehicle monetary figures. All three operations
// are read-only.
type FinanceService interface {
	// TotalExpenses sums the vehicle's expense amounts, zero when none exist.
	TotalExpenses(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error)
	// ProjectedProfit is list price minus purchase price minus total
	// expenses. Defined for any status: it is the expected margin while the
	// vehicle sits in stock.
	ProjectedProfit(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error)
	// RealizedProfit is sale price minus purchase price minus total
	// expenses, only once the vehicle is sold. The trade-in value is
	// excluded: the trade-in is a separate incoming asset, not a discount
	// on this sale's margin. Returns nil when the vehicle is not sold or
	// no sale row exists.
	RealizedProfit(ctx context.Context, vehicleID uuid.UUID) (*decimal.Decimal, error)
}

type financeService struct {
	vehicleRepo repository.VehicleRepository
	expenseRepo repository.ExpenseRepository
	saleRepo    repository.SaleRepository
}

func NewFinanceService(
	vehicleRepo repository.VehicleRepository,
	expenseRepo repository.ExpenseRepository,
	saleRepo repository.SaleRepository,
) FinanceService {
	return &financeService{
		vehicleRepo: vehicleRepo,
		expenseRepo: expenseRepo,
		saleRepo:    saleRepo,
	}
}

func (s *financeService) TotalExpenses(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.expenseRepo.SumByVehicle(ctx, vehicleID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

func (s *financeService) ProjectedProfit(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load vehicle: %w", err)
	}
	total, err := s.TotalExpenses(ctx, vehicleID)
	if err != nil {
		return decimal.Zero, err
	}
	return vehicle.ListPrice.Sub(vehicle.PurchasePrice).Sub(total), nil
}

func (s *financeService) RealizedProfit(ctx context.Context, vehicleID uuid.UUID) (*decimal.Decimal, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	return s.realizedProfitFor(ctx, vehicle)
}

// realizedProfitFor computes realized profit for an already-loaded vehicle.
// Absence of a sale is an expected state, not an error: the result is nil,
// never zero, so reporting can tell "no margin yet" from "sold at cost".
func (s *financeService) realizedProfitFor(ctx context.Context, vehicle *model.Vehicle) (*decimal.Decimal, error) {
	if vehicle.Status != model.VehicleSold {
		return nil, nil
	}
	sale, err := s.saleRepo.FindByVehicleID(ctx, vehicle.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	total, err := s.TotalExpenses(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}
	profit := sale.SalePrice.Sub(vehicle.PurchasePrice).Sub(total)
	return &profit, nil
}
