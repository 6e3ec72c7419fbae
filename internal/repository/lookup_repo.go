package repository

import (
	"context"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LookupRepository persists the two small reference tables: expense types
// and payment methods.
type LookupRepository interface {
	CreateExpenseType(ctx context.Context, t *model.ExpenseType) error
	UpdateExpenseType(ctx context.Context, t *model.ExpenseType) error
	DeleteExpenseType(ctx context.Context, id uuid.UUID) error
	FindExpenseTypeByID(ctx context.Context, id uuid.UUID) (*model.ExpenseType, error)
	ListExpenseTypes(ctx context.Context, activeOnly bool) ([]model.ExpenseType, error)

	CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id uuid.UUID) error
	FindPaymentMethodByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
}

type lookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) CreateExpenseType(ctx context.Context, t *model.ExpenseType) error {
	return GetDB(ctx, r.db).Create(t).Error
}

func (r *lookupRepository) UpdateExpenseType(ctx context.Context, t *model.ExpenseType) error {
	return GetDB(ctx, r.db).Save(t).Error
}

func (r *lookupRepository) DeleteExpenseType(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ExpenseType{}).Error
}

func (r *lookupRepository) FindExpenseTypeByID(ctx context.Context, id uuid.UUID) (*model.ExpenseType, error) {
	var t model.ExpenseType
	if err := GetDB(ctx, r.db).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *lookupRepository) ListExpenseTypes(ctx context.Context, activeOnly bool) ([]model.ExpenseType, error) {
	var types []model.ExpenseType
	query := GetDB(ctx, r.db).Model(&model.ExpenseType{})
	if activeOnly {
		query = query.Where("is_active = true")
	}
	if err := query.Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *lookupRepository) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *lookupRepository) UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *lookupRepository) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PaymentMethod{}).Error
}

func (r *lookupRepository) FindPaymentMethodByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *lookupRepository) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	query := GetDB(ctx, r.db).Model(&model.PaymentMethod{})
	if activeOnly {
		query = query.Where("is_active = true")
	}
	if err := query.Order("name ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}
