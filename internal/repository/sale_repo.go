package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleFilter narrows sale queries for listing and reporting.
type SaleFilter struct {
	From       *time.Time
	To         *time.Time
	VehicleID  *uuid.UUID
	CustomerID *uuid.UUID
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter, page, limit int) ([]model.Sale, int64, error)
	ListByFilter(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	ListRecent(ctx context.Context, filter SaleFilter, limit int) ([]model.Sale, error)
	SumSalePrices(ctx context.Context, filter SaleFilter) (decimal.Decimal, error)
	SumTradeInValues(ctx context.Context, filter SaleFilter) (decimal.Decimal, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (int64, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func applySaleFilter(query *gorm.DB, filter SaleFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	return query
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).
		Preload("Vehicle").Preload("Customer").Preload("PaymentMethod").Preload("TradeInVehicle").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).First(&sale, "vehicle_id = ?", vehicleID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter, page, limit int) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db)
	query := applySaleFilter(db.Model(&model.Sale{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Vehicle").Preload("Customer").Preload("PaymentMethod").
		Order("sale_date DESC").Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *saleRepository) ListByFilter(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	query := applySaleFilter(GetDB(ctx, r.db).Model(&model.Sale{}), filter)
	if err := query.Preload("Vehicle").Preload("Customer").Preload("TradeInVehicle").
		Order("sale_date DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) ListRecent(ctx context.Context, filter SaleFilter, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	query := applySaleFilter(GetDB(ctx, r.db).Model(&model.Sale{}), filter)
	if err := query.Preload("Vehicle").Preload("Customer").
		Order("sale_date DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) sumColumn(ctx context.Context, column string, filter SaleFilter) (decimal.Decimal, error) {
	var raw string
	query := applySaleFilter(GetDB(ctx, r.db).Model(&model.Sale{}), filter).
		Select("COALESCE(SUM(" + column + "), 0)")
	if err := query.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *saleRepository) SumSalePrices(ctx context.Context, filter SaleFilter) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "sale_price", filter)
}

func (r *saleRepository) SumTradeInValues(ctx context.Context, filter SaleFilter) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "trade_in_value", filter)
}

func (r *saleRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Sale{}).Where("customer_id = ?", customerID).Count(&total).Error
	return total, err
}

func (r *saleRepository) CountByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Sale{}).Where("payment_method_id = ?", paymentMethodID).Count(&total).Error
	return total, err
}
