package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealership/internal/apperror"
	"dealership/internal/model"
	"dealership/internal/repository"
	ws "dealership/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type SettleSaleRequest struct {
	VehicleID       string `json:"vehicle_id" binding:"required"`
	CustomerID      string `json:"customer_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
	SalePrice       string `json:"sale_price" binding:"required"` // decimal string
	TradeInVehicleID string `json:"trade_in_vehicle_id"`
	TradeInValue    string `json:"trade_in_value"`
	Notes           string `json:"notes"`
	SaleDate        string `json:"sale_date" binding:"required"` // YYYY-MM-DD
}

type SaleResponse struct {
	ID               string  `json:"id"`
	VehicleID        string  `json:"vehicle_id"`
	VehiclePlate     string  `json:"vehicle_plate,omitempty"`
	CustomerID       string  `json:"customer_id"`
	CustomerName     string  `json:"customer_name,omitempty"`
	PaymentMethodID  string  `json:"payment_method_id"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	SalePrice        string  `json:"sale_price"`
	TradeInVehicleID *string `json:"trade_in_vehicle_id"`
	TradeInValue     string  `json:"trade_in_value"`
	NetAmountDue     string  `json:"net_amount_due"` // sale price - trade-in value, derived
	Notes            string  `json:"notes"`
	SaleDate         string  `json:"sale_date"`
	CreatedAt        string  `json:"created_at"`
}

// --- Interface ---

type SaleService interface {
	// SettleSale validates and finalizes a sale as one atomic transaction:
	// the sale row, the sold vehicle's status flip and the trade-in's move
	// into stock apply together or not at all.
	SettleSale(ctx context.Context, userID string, req SettleSaleRequest) (SaleResponse, error)
	GetSale(ctx context.Context, id string) (SaleResponse, error)
	ListSales(ctx context.Context, filter repository.SaleFilter, page, limit int) ([]SaleResponse, int64, error)
}

type saleService struct {
	saleRepo    repository.SaleRepository
	vehicleRepo repository.VehicleRepository
	customerRepo repository.CustomerRepository
	lookupRepo  repository.LookupRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	vehicleRepo repository.VehicleRepository,
	customerRepo repository.CustomerRepository,
	lookupRepo repository.LookupRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		lookupRepo:   lookupRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *saleService) SettleSale(ctx context.Context, userID string, req SettleSaleRequest) (SaleResponse, error) {
	// All validation happens before any write.
	vehicleID, err := parseID(req.VehicleID, "vehicle")
	if err != nil {
		return SaleResponse{}, err
	}
	customerID, err := parseID(req.CustomerID, "customer")
	if err != nil {
		return SaleResponse{}, err
	}
	paymentMethodID, err := parseID(req.PaymentMethodID, "payment method")
	if err != nil {
		return SaleResponse{}, err
	}
	salePrice, err := parsePositiveAmount(req.SalePrice, "sale_price")
	if err != nil {
		return SaleResponse{}, err
	}
	tradeInValue, err := parseNonNegativeAmount(req.TradeInValue, "trade_in_value")
	if err != nil {
		return SaleResponse{}, err
	}
	saleDate, err := parseDate(req.SaleDate, "sale_date")
	if err != nil {
		return SaleResponse{}, err
	}

	var tradeInID *uuid.UUID
	if req.TradeInVehicleID != "" {
		parsed, parseErr := parseID(req.TradeInVehicleID, "trade-in vehicle")
		if parseErr != nil {
			return SaleResponse{}, parseErr
		}
		if parsed == vehicleID {
			return SaleResponse{}, apperror.Validationf("trade-in vehicle cannot be the vehicle being sold")
		}
		tradeInID = &parsed
	}

	sale := model.Sale{
		VehicleID:       vehicleID,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		SalePrice:       salePrice,
		TradeInVehicleID: tradeInID,
		TradeInValue:    tradeInValue,
		Notes:           req.Notes,
		SaleDate:        saleDate,
	}

	var vehicle *model.Vehicle
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock the vehicle row so concurrent settlements serialize here;
		// the loser re-reads SOLD and fails the precondition cleanly.
		var txErr error
		vehicle, txErr = s.vehicleRepo.FindByIDForUpdate(txCtx, vehicleID)
		if txErr != nil {
			return apperror.FromDB(txErr, "vehicle")
		}
		if vehicle.Status == model.VehicleSold {
			return apperror.Conflictf("vehicle %s is already sold", vehicle.Plate)
		}

		if _, txErr = s.customerRepo.FindByID(txCtx, customerID); txErr != nil {
			return apperror.FromDB(txErr, "customer")
		}
		method, txErr := s.lookupRepo.FindPaymentMethodByID(txCtx, paymentMethodID)
		if txErr != nil {
			return apperror.FromDB(txErr, "payment method")
		}
		if !method.IsActive {
			return apperror.Conflictf("payment method %s is deactivated", method.Name)
		}

		if txErr = s.saleRepo.Create(txCtx, &sale); txErr != nil {
			return fmt.Errorf("failed to create sale: %w", apperror.FromDB(txErr, "sale"))
		}

		if txErr = s.vehicleRepo.UpdateStatus(txCtx, vehicleID, model.VehicleSold); txErr != nil {
			return fmt.Errorf("failed to mark vehicle sold: %w", txErr)
		}

		// The trade-in left the customer and entered our stock; it becomes
		// available regardless of its prior status.
		if tradeInID != nil {
			if _, txErr = s.vehicleRepo.FindByIDForUpdate(txCtx, *tradeInID); txErr != nil {
				return apperror.FromDB(txErr, "trade-in vehicle")
			}
			if txErr = s.vehicleRepo.UpdateStatus(txCtx, *tradeInID, model.VehicleAvailable); txErr != nil {
				return fmt.Errorf("failed to move trade-in into stock: %w", txErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"vehicle_id":     vehicleID.String(),
			"customer_id":    customerID.String(),
			"sale_price":     salePrice.StringFixed(2),
			"trade_in_value": tradeInValue.StringFixed(2),
			"sale_date":      req.SaleDate,
		})
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionSettleSale,
			EntityID:   sale.ID.String(),
			EntityName: vehicle.Plate,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return SaleResponse{}, err
	}

	s.broadcastSettled(&sale, vehicle)

	resp := toSaleResponse(&sale)
	resp.VehiclePlate = vehicle.Plate
	return resp, nil
}

func (s *saleService) GetSale(ctx context.Context, id string) (SaleResponse, error) {
	uid, err := parseID(id, "sale")
	if err != nil {
		return SaleResponse{}, err
	}
	sale, err := s.saleRepo.FindByID(ctx, uid)
	if err != nil {
		return SaleResponse{}, apperror.FromDB(err, "sale")
	}
	return toSaleResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter, page, limit int) ([]SaleResponse, int64, error) {
	sales, total, err := s.saleRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}
	res := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		res = append(res, toSaleResponse(&sales[i]))
	}
	return res, total, nil
}

// broadcastSettled pushes an inventory event to connected clients after the
// transaction commits. Best-effort: a nil hub (tests) is skipped.
func (s *saleService) broadcastSettled(sale *model.Sale, vehicle *model.Vehicle) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(ws.InventoryEvent{
		Event: ws.EventSaleSettled,
		Data: map[string]interface{}{
			"sale_id":        sale.ID.String(),
			"vehicle_id":     sale.VehicleID.String(),
			"vehicle_plate":  vehicle.Plate,
			"sale_price":     sale.SalePrice.StringFixed(2),
			"net_amount_due": sale.NetAmountDue().StringFixed(2),
		},
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func toSaleResponse(sale *model.Sale) SaleResponse {
	resp := SaleResponse{
		ID:              sale.ID.String(),
		VehicleID:       sale.VehicleID.String(),
		CustomerID:      sale.CustomerID.String(),
		PaymentMethodID: sale.PaymentMethodID.String(),
		SalePrice:       sale.SalePrice.StringFixed(2),
		TradeInValue:    sale.TradeInValue.StringFixed(2),
		NetAmountDue:    sale.NetAmountDue().StringFixed(2),
		Notes:           sale.Notes,
		SaleDate:        sale.SaleDate.Format(dateLayout),
		CreatedAt:       sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.TradeInVehicleID != nil {
		str := sale.TradeInVehicleID.String()
		resp.TradeInVehicleID = &str
	}
	if sale.Vehicle != nil {
		resp.VehiclePlate = sale.Vehicle.Plate
	}
	if sale.Customer != nil {
		resp.CustomerName = sale.Customer.Name
	}
	if sale.PaymentMethod != nil {
		resp.PaymentMethod = sale.PaymentMethod.Name
	}
	return resp
}
