package service

import (
	"context"
	"fmt"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"
)

// --- DTOs ---

type LookupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateLookupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type LookupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// --- Interface ---

// LookupService manages the two reference tables. Both are protected:
// deletion fails while any expense or sale still points at the row.
type LookupService interface {
	CreateExpenseType(ctx context.Context, req LookupRequest) (LookupResponse, error)
	UpdateExpenseType(ctx context.Context, id string, req UpdateLookupRequest) (LookupResponse, error)
	DeleteExpenseType(ctx context.Context, id string) error
	ListExpenseTypes(ctx context.Context, activeOnly bool) ([]LookupResponse, error)

	CreatePaymentMethod(ctx context.Context, req LookupRequest) (LookupResponse, error)
	UpdatePaymentMethod(ctx context.Context, id string, req UpdateLookupRequest) (LookupResponse, error)
	DeletePaymentMethod(ctx context.Context, id string) error
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]LookupResponse, error)
}

type lookupService struct {
	lookupRepo  repository.LookupRepository
	expenseRepo repository.ExpenseRepository
	saleRepo    repository.SaleRepository
}

func NewLookupService(
	lookupRepo repository.LookupRepository,
	expenseRepo repository.ExpenseRepository,
	saleRepo repository.SaleRepository,
) LookupService {
	return &lookupService{
		lookupRepo:  lookupRepo,
		expenseRepo: expenseRepo,
		saleRepo:    saleRepo,
	}
}

// --- Expense types ---

func (s *lookupService) CreateExpenseType(ctx context.Context, req LookupRequest) (LookupResponse, error) {
	t := &model.ExpenseType{Name: req.Name, Description: req.Description, IsActive: true}
	if err := s.lookupRepo.CreateExpenseType(ctx, t); err != nil {
		return LookupResponse{}, fmt.Errorf("failed to create expense type: %w", apperror.FromDB(err, "expense type"))
	}
	return toLookupResponse(t.ID.String(), t.Name, t.Description, t.IsActive), nil
}

func (s *lookupService) UpdateExpenseType(ctx context.Context, id string, req UpdateLookupRequest) (LookupResponse, error) {
	uid, err := parseID(id, "expense type")
	if err != nil {
		return LookupResponse{}, err
	}
	t, err := s.lookupRepo.FindExpenseTypeByID(ctx, uid)
	if err != nil {
		return LookupResponse{}, apperror.FromDB(err, "expense type")
	}
	if req.Name != nil {
		if *req.Name == "" {
			return LookupResponse{}, apperror.Validationf("name cannot be empty")
		}
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if err := s.lookupRepo.UpdateExpenseType(ctx, t); err != nil {
		return LookupResponse{}, fmt.Errorf("failed to update expense type: %w", apperror.FromDB(err, "expense type"))
	}
	return toLookupResponse(t.ID.String(), t.Name, t.Description, t.IsActive), nil
}

func (s *lookupService) DeleteExpenseType(ctx context.Context, id string) error {
	uid, err := parseID(id, "expense type")
	if err != nil {
		return err
	}
	refs, err := s.expenseRepo.CountByType(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to check expense type references: %w", err)
	}
	if refs > 0 {
		return apperror.InUsef("cannot delete expense type, still in use")
	}
	if err := s.lookupRepo.DeleteExpenseType(ctx, uid); err != nil {
		return apperror.FromDB(err, "expense type")
	}
	return nil
}

func (s *lookupService) ListExpenseTypes(ctx context.Context, activeOnly bool) ([]LookupResponse, error) {
	types, err := s.lookupRepo.ListExpenseTypes(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expense types: %w", err)
	}
	res := make([]LookupResponse, 0, len(types))
	for _, t := range types {
		res = append(res, toLookupResponse(t.ID.String(), t.Name, t.Description, t.IsActive))
	}
	return res, nil
}

// --- Payment methods ---

func (s *lookupService) CreatePaymentMethod(ctx context.Context, req LookupRequest) (LookupResponse, error) {
	m := &model.PaymentMethod{Name: req.Name, IsActive: true}
	if err := s.lookupRepo.CreatePaymentMethod(ctx, m); err != nil {
		return LookupResponse{}, fmt.Errorf("failed to create payment method: %w", apperror.FromDB(err, "payment method"))
	}
	return toLookupResponse(m.ID.String(), m.Name, "", m.IsActive), nil
}

func (s *lookupService) UpdatePaymentMethod(ctx context.Context, id string, req UpdateLookupRequest) (LookupResponse, error) {
	uid, err := parseID(id, "payment method")
	if err != nil {
		return LookupResponse{}, err
	}
	m, err := s.lookupRepo.FindPaymentMethodByID(ctx, uid)
	if err != nil {
		return LookupResponse{}, apperror.FromDB(err, "payment method")
	}
	if req.Name != nil {
		if *req.Name == "" {
			return LookupResponse{}, apperror.Validationf("name cannot be empty")
		}
		m.Name = *req.Name
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if err := s.lookupRepo.UpdatePaymentMethod(ctx, m); err != nil {
		return LookupResponse{}, fmt.Errorf("failed to update payment method: %w", apperror.FromDB(err, "payment method"))
	}
	return toLookupResponse(m.ID.String(), m.Name, "", m.IsActive), nil
}

func (s *lookupService) DeletePaymentMethod(ctx context.Context, id string) error {
	uid, err := parseID(id, "payment method")
	if err != nil {
		return err
	}
	refs, err := s.saleRepo.CountByPaymentMethod(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to check payment method references: %w", err)
	}
	if refs > 0 {
		return apperror.InUsef("cannot delete payment method, still in use")
	}
	if err := s.lookupRepo.DeletePaymentMethod(ctx, uid); err != nil {
		return apperror.FromDB(err, "payment method")
	}
	return nil
}

func (s *lookupService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]LookupResponse, error) {
	methods, err := s.lookupRepo.ListPaymentMethods(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment methods: %w", err)
	}
	res := make([]LookupResponse, 0, len(methods))
	for _, m := range methods {
		res = append(res, toLookupResponse(m.ID.String(), m.Name, "", m.IsActive))
	}
	return res, nil
}

func toLookupResponse(id, name, description string, isActive bool) LookupResponse {
	return LookupResponse{ID: id, Name: name, Description: description, IsActive: isActive}
}
