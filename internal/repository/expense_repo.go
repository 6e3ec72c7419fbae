package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Expense, error)
	// SumByVehicle returns the exact decimal sum of the vehicle's expense
	// amounts, zero when none exist.
	SumByVehicle(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error)
	SumByDateRange(ctx context.Context, from, to *time.Time) (decimal.Decimal, error)
	CountByType(ctx context.Context, typeID uuid.UUID) (int64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Expense{}).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).Preload("Type").Preload("Supplier").
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := GetDB(ctx, r.db).Preload("Type").Preload("Supplier").
		Where("vehicle_id = ?", vehicleID).
		Order("expense_date DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Sums are scanned as strings so the decimal values round-trip without
// passing through binary floats.
func (r *expenseRepository) SumByVehicle(ctx context.Context, vehicleID uuid.UUID) (decimal.Decimal, error) {
	var raw string
	err := GetDB(ctx, r.db).Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("vehicle_id = ?", vehicleID).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *expenseRepository) SumByDateRange(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	var raw string
	query := GetDB(ctx, r.db).Model(&model.Expense{}).Select("COALESCE(SUM(amount), 0)")
	if from != nil {
		query = query.Where("expense_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("expense_date <= ?", *to)
	}
	if err := query.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *expenseRepository) CountByType(ctx context.Context, typeID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Expense{}).Where("type_id = ?", typeID).Count(&total).Error
	return total, err
}
