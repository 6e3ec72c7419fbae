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

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"tax_id"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"tax_id"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, saleRepo repository.SaleRepository) CustomerService {
	return &customerService{customerRepo: customerRepo, saleRepo: saleRepo}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error) {
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return CustomerResponse{}, apperror.Validationf("invalid email format")
		}
	}

	customer := &model.Customer{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", apperror.FromDB(err, "customer"))
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	uid, err := parseID(id, "customer")
	if err != nil {
		return CustomerResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, uid)
	if err != nil {
		return CustomerResponse{}, apperror.FromDB(err, "customer")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return CustomerResponse{}, apperror.Validationf("name cannot be empty")
		}
		customer.Name = *req.Name
	}
	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return CustomerResponse{}, apperror.Validationf("phone cannot be empty")
		}
		customer.Phone = *req.Phone
	}
	if req.Email != nil && *req.Email != "" {
		if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
			return CustomerResponse{}, apperror.Validationf("invalid email format")
		}
		customer.Email = *req.Email
	} else if req.Email != nil {
		customer.Email = ""
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	uid, err := parseID(id, "customer")
	if err != nil {
		return err
	}
	// Customers referenced by sales are protected records.
	sales, err := s.saleRepo.CountByCustomer(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to check customer references: %w", err)
	}
	if sales > 0 {
		return apperror.InUsef("cannot delete customer, still in use")
	}
	if err := s.customerRepo.Delete(ctx, uid); err != nil {
		return apperror.FromDB(err, "customer")
	}
	return nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	uid, err := parseID(id, "customer")
	if err != nil {
		return CustomerResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, uid)
	if err != nil {
		return CustomerResponse{}, apperror.FromDB(err, "customer")
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, toCustomerResponse(c))
	}
	return res, total, nil
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		TaxID:     c.TaxID,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
