package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	TypeID      string `json:"type_id" binding:"required"`
	SupplierID  string `json:"supplier_id"`
	Amount      string `json:"amount" binding:"required"` // decimal string
	Description string `json:"description" binding:"required"`
	ExpenseDate string `json:"expense_date" binding:"required"` // YYYY-MM-DD
}

type UpdateExpenseRequest struct {
	TypeID      *string `json:"type_id"`
	SupplierID  *string `json:"supplier_id"` // empty string clears the reference
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	ExpenseDate *string `json:"expense_date"`
}

type ExpenseResponse struct {
	ID           string  `json:"id"`
	VehicleID    string  `json:"vehicle_id"`
	TypeID       string  `json:"type_id"`
	TypeName     string  `json:"type_name,omitempty"`
	SupplierID   *string `json:"supplier_id"`
	SupplierName string  `json:"supplier_name,omitempty"`
	Amount       string  `json:"amount"`
	Description  string  `json:"description"`
	ExpenseDate  string  `json:"expense_date"`
	CreatedAt    string  `json:"created_at"`
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID, vehicleID string, req CreateExpenseRequest) (ExpenseResponse, error)
	UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, userID, id string) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]ExpenseResponse, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	vehicleRepo repository.VehicleRepository
	lookupRepo  repository.LookupRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	vehicleRepo repository.VehicleRepository,
	lookupRepo repository.LookupRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		vehicleRepo: vehicleRepo,
		lookupRepo:  lookupRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, userID, vehicleID string, req CreateExpenseRequest) (ExpenseResponse, error) {
	vid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return ExpenseResponse{}, err
	}
	typeID, err := parseID(req.TypeID, "expense type")
	if err != nil {
		return ExpenseResponse{}, err
	}
	amount, err := parsePositiveAmount(req.Amount, "amount")
	if err != nil {
		return ExpenseResponse{}, err
	}
	expenseDate, err := parseDate(req.ExpenseDate, "expense_date")
	if err != nil {
		return ExpenseResponse{}, err
	}

	if _, err = s.vehicleRepo.FindByID(ctx, vid); err != nil {
		return ExpenseResponse{}, apperror.FromDB(err, "vehicle")
	}

	expense := model.Expense{
		VehicleID:   vid,
		TypeID:      typeID,
		Amount:      amount,
		Description: req.Description,
		ExpenseDate: expenseDate,
	}
	if req.SupplierID != "" {
		supplierID, parseErr := parseID(req.SupplierID, "supplier")
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.SupplierID = &supplierID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The type must still be active when the expense lands; a type
		// deactivated mid-flow blocks the write.
		expenseType, txErr := s.lookupRepo.FindExpenseTypeByID(txCtx, typeID)
		if txErr != nil {
			return apperror.FromDB(txErr, "expense type")
		}
		if !expenseType.IsActive {
			return apperror.Conflictf("expense type %s is deactivated", expenseType.Name)
		}

		if txErr = s.expenseRepo.Create(txCtx, &expense); txErr != nil {
			return fmt.Errorf("failed to create expense: %w", apperror.FromDB(txErr, "expense"))
		}

		details, _ := json.Marshal(map[string]interface{}{
			"vehicle_id":   vehicleID,
			"type":         expenseType.Name,
			"amount":       req.Amount,
			"expense_date": req.ExpenseDate,
		})
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionCreateExpense,
			EntityID:   expense.ID.String(),
			EntityName: req.Description,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(expense), nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error) {
	uid, err := parseID(id, "expense")
	if err != nil {
		return ExpenseResponse{}, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, uid)
	if err != nil {
		return ExpenseResponse{}, apperror.FromDB(err, "expense")
	}

	if req.TypeID != nil {
		typeID, parseErr := parseID(*req.TypeID, "expense type")
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.TypeID = typeID
		expense.Type = nil
	}
	if req.SupplierID != nil {
		if *req.SupplierID == "" {
			expense.SupplierID = nil
		} else {
			supplierID, parseErr := parseID(*req.SupplierID, "supplier")
			if parseErr != nil {
				return ExpenseResponse{}, parseErr
			}
			expense.SupplierID = &supplierID
		}
		expense.Supplier = nil
	}
	if req.Amount != nil {
		amount, parseErr := parsePositiveAmount(*req.Amount, "amount")
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.Amount = amount
	}
	if req.Description != nil {
		if *req.Description == "" {
			return ExpenseResponse{}, apperror.Validationf("description cannot be empty")
		}
		expense.Description = *req.Description
	}
	if req.ExpenseDate != nil {
		date, parseErr := parseDate(*req.ExpenseDate, "expense_date")
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.ExpenseDate = date
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
			return fmt.Errorf("failed to update expense: %w", apperror.FromDB(updateErr, "expense"))
		}
		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionUpdateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Description,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(*expense), nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID, id string) error {
	uid, err := parseID(id, "expense")
	if err != nil {
		return err
	}
	expense, err := s.expenseRepo.FindByID(ctx, uid)
	if err != nil {
		return apperror.FromDB(err, "expense")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.expenseRepo.Delete(txCtx, uid); delErr != nil {
			return apperror.FromDB(delErr, "expense")
		}
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionDeleteExpense,
			EntityID:   uid.String(),
			EntityName: expense.Description,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func (s *expenseService) ListByVehicle(ctx context.Context, vehicleID string) ([]ExpenseResponse, error) {
	vid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByVehicle(ctx, vid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	res := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		res = append(res, toExpenseResponse(e))
	}
	return res, nil
}

// --- Response mapping ---

func toExpenseResponse(e model.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID.String(),
		VehicleID:   e.VehicleID.String(),
		TypeID:      e.TypeID.String(),
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format(dateLayout),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.Type != nil {
		resp.TypeName = e.Type.Name
	}
	if e.SupplierID != nil {
		str := e.SupplierID.String()
		resp.SupplierID = &str
	}
	if e.Supplier != nil {
		resp.SupplierName = e.Supplier.Name
	}
	return resp
}
