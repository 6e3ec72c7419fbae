package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"
)

// --- DTOs ---

type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"tax_id"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name"`
	TaxID    *string `json:"tax_id"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

type SupplierResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id string) error
	GetSupplier(ctx context.Context, id string) (SupplierResponse, error)
	ListSuppliers(ctx context.Context, search string, activeOnly bool, page, limit int) ([]SupplierResponse, int64, error)
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

// --- Implementation ---

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error) {
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return SupplierResponse{}, apperror.Validationf("invalid email format")
		}
	}

	supplier := &model.Supplier{
		Name:     req.Name,
		TaxID:    req.TaxID,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to create supplier: %w", apperror.FromDB(err, "supplier"))
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return SupplierResponse{}, err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, uid)
	if err != nil {
		return SupplierResponse{}, apperror.FromDB(err, "supplier")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return SupplierResponse{}, apperror.Validationf("name cannot be empty")
		}
		supplier.Name = *req.Name
	}
	if req.TaxID != nil {
		supplier.TaxID = *req.TaxID
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil && *req.Email != "" {
		if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
			return SupplierResponse{}, apperror.Validationf("invalid email format")
		}
		supplier.Email = *req.Email
	} else if req.Email != nil {
		supplier.Email = ""
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return err
	}
	refs, err := s.supplierRepo.CountReferences(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to check supplier references: %w", err)
	}
	if refs > 0 {
		return apperror.InUsef("cannot delete supplier, still in use")
	}
	if err := s.supplierRepo.Delete(ctx, uid); err != nil {
		return apperror.FromDB(err, "supplier")
	}
	return nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (SupplierResponse, error) {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return SupplierResponse{}, err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, uid)
	if err != nil {
		return SupplierResponse{}, apperror.FromDB(err, "supplier")
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, search string, activeOnly bool, page, limit int) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.List(ctx, search, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	res := make([]SupplierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		res = append(res, toSupplierResponse(sup))
	}
	return res, total, nil
}

func toSupplierResponse(s model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		TaxID:     s.TaxID,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
