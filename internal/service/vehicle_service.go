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

type CreateVehicleRequest struct {
	Make          string `json:"make" binding:"required"`
	Model         string `json:"model" binding:"required"`
	Year          int    `json:"year" binding:"required"`
	Plate         string `json:"plate" binding:"required"`
	VIN           string `json:"vin"`
	Color         string `json:"color"`
	Mileage       int    `json:"mileage"`
	SupplierID    string `json:"supplier_id"`
	PurchasePrice string `json:"purchase_price" binding:"required"` // decimal string
	ListPrice     string `json:"list_price" binding:"required"`
	Notes         string `json:"notes"`
	PurchaseDate  string `json:"purchase_date" binding:"required"` // YYYY-MM-DD
	ImageURLs     []string `json:"image_urls"`
}

type UpdateVehicleRequest struct {
	Make          *string `json:"make"`
	Model         *string `json:"model"`
	Year          *int    `json:"year"`
	Plate         *string `json:"plate"`
	VIN           *string `json:"vin"`
	Color         *string `json:"color"`
	Mileage       *int    `json:"mileage"`
	SupplierID    *string `json:"supplier_id"` // empty string clears the reference
	PurchasePrice *string `json:"purchase_price"`
	ListPrice     *string `json:"list_price"`
	Notes         *string `json:"notes"`
	PurchaseDate  *string `json:"purchase_date"`
}

type AddImagesRequest struct {
	Images []ImagePayload `json:"images" binding:"required,min=1"`
}

type ImagePayload struct {
	URL         string `json:"url" binding:"required"`
	Description string `json:"description"`
}

type VehicleImageResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Principal   bool   `json:"principal"`
	SortOrder   int    `json:"sort_order"`
}

type VehicleResponse struct {
	ID              string                 `json:"id"`
	Make            string                 `json:"make"`
	Model           string                 `json:"model"`
	Year            int                    `json:"year"`
	Plate           string                 `json:"plate"`
	VIN             string                 `json:"vin"`
	Color           string                 `json:"color"`
	Mileage         int                    `json:"mileage"`
	SupplierID      *string                `json:"supplier_id"`
	SupplierName    string                 `json:"supplier_name,omitempty"`
	PurchasePrice   string                 `json:"purchase_price"`
	ListPrice       string                 `json:"list_price"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes"`
	PurchaseDate    string                 `json:"purchase_date"`
	TotalExpenses   string                 `json:"total_expenses"`
	ProjectedProfit string                 `json:"projected_profit"`
	RealizedProfit  *string                `json:"realized_profit"` // null unless sold
	Images          []VehicleImageResponse `json:"images,omitempty"`
	CreatedAt       string                 `json:"created_at"`
}

// --- Interface ---

type VehicleService interface {
	CreateVehicle(ctx context.Context, userID string, req CreateVehicleRequest) (VehicleResponse, error)
	UpdateVehicle(ctx context.Context, userID, id string, req UpdateVehicleRequest) (VehicleResponse, error)
	DeleteVehicle(ctx context.Context, userID, id string) error
	GetVehicle(ctx context.Context, id string) (VehicleResponse, error)
	ListVehicles(ctx context.Context, status, search string, page, limit int) ([]VehicleResponse, int64, error)
	// ChangeStatus moves a vehicle between AVAILABLE and IN_MAINTENANCE.
	// SOLD is only entered through sale settlement and never left.
	ChangeStatus(ctx context.Context, userID, id, status string) (VehicleResponse, error)
	// AddImages appends images preserving the caller's ordering. The first
	// appended image becomes principal when the vehicle has none.
	AddImages(ctx context.Context, id string, req AddImagesRequest) ([]VehicleImageResponse, error)
	// MarkPrincipalImage clears the principal flag on the vehicle's other
	// images and sets it on the given one, atomically.
	MarkPrincipalImage(ctx context.Context, vehicleID, imageID string) error
	DeleteImage(ctx context.Context, vehicleID, imageID string) error
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	imageRepo   repository.ImageRepository
	expenseRepo repository.ExpenseRepository
	saleRepo    repository.SaleRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	finance     FinanceService
	hub         *ws.Hub
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	imageRepo repository.ImageRepository,
	expenseRepo repository.ExpenseRepository,
	saleRepo repository.SaleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	finance FinanceService,
	hub *ws.Hub,
) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		imageRepo:   imageRepo,
		expenseRepo: expenseRepo,
		saleRepo:    saleRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		finance:     finance,
		hub:         hub,
	}
}

// --- Helpers ---

const dateLayout = "2006-01-02"

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.Validationf("invalid %s: expected YYYY-MM-DD", field)
	}
	return t, nil
}

func parseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validationf("invalid %s ID", entity)
	}
	return id, nil
}

func auditUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

// --- Implementation ---

func (s *vehicleService) CreateVehicle(ctx context.Context, userID string, req CreateVehicleRequest) (VehicleResponse, error) {
	if req.Mileage < 0 {
		return VehicleResponse{}, apperror.Validationf("mileage must not be negative")
	}
	purchasePrice, err := parsePositiveAmount(req.PurchasePrice, "purchase_price")
	if err != nil {
		return VehicleResponse{}, err
	}
	listPrice, err := parsePositiveAmount(req.ListPrice, "list_price")
	if err != nil {
		return VehicleResponse{}, err
	}
	purchaseDate, err := parseDate(req.PurchaseDate, "purchase_date")
	if err != nil {
		return VehicleResponse{}, err
	}

	vehicle := model.Vehicle{
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		Plate:         req.Plate,
		VIN:           req.VIN,
		Color:         req.Color,
		Mileage:       req.Mileage,
		PurchasePrice: purchasePrice,
		ListPrice:     listPrice,
		Status:        model.VehicleAvailable,
		Notes:         req.Notes,
		PurchaseDate:  purchaseDate,
	}
	if req.SupplierID != "" {
		supplierID, err := parseID(req.SupplierID, "supplier")
		if err != nil {
			return VehicleResponse{}, err
		}
		vehicle.SupplierID = &supplierID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vehicleRepo.Create(txCtx, &vehicle); createErr != nil {
			return fmt.Errorf("failed to create vehicle: %w", apperror.FromDB(createErr, "vehicle"))
		}

		// Intake images: the first upload is the principal listing photo.
		if len(req.ImageURLs) > 0 {
			images := make([]model.VehicleImage, 0, len(req.ImageURLs))
			for idx, url := range req.ImageURLs {
				images = append(images, model.VehicleImage{
					VehicleID: vehicle.ID,
					URL:       url,
					Principal: idx == 0,
					SortOrder: idx,
				})
			}
			if imgErr := s.imageRepo.CreateBatch(txCtx, images); imgErr != nil {
				return fmt.Errorf("failed to create images: %w", imgErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"plate":          req.Plate,
			"make":           req.Make,
			"model":          req.Model,
			"year":           req.Year,
			"purchase_price": req.PurchasePrice,
			"list_price":     req.ListPrice,
		})
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionCreateVehicle,
			EntityID:   vehicle.ID.String(),
			EntityName: req.Make + " " + req.Model + " (" + req.Plate + ")",
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VehicleResponse{}, err
	}

	return s.toVehicleResponse(ctx, &vehicle)
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, userID, id string, req UpdateVehicleRequest) (VehicleResponse, error) {
	uid, err := parseID(id, "vehicle")
	if err != nil {
		return VehicleResponse{}, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, uid)
	if err != nil {
		return VehicleResponse{}, apperror.FromDB(err, "vehicle")
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Plate != nil {
		if *req.Plate == "" {
			return VehicleResponse{}, apperror.Validationf("plate cannot be empty")
		}
		vehicle.Plate = *req.Plate
	}
	if req.VIN != nil {
		vehicle.VIN = *req.VIN
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.Mileage != nil {
		if *req.Mileage < 0 {
			return VehicleResponse{}, apperror.Validationf("mileage must not be negative")
		}
		vehicle.Mileage = *req.Mileage
	}
	if req.SupplierID != nil {
		if *req.SupplierID == "" {
			vehicle.SupplierID = nil
		} else {
			supplierID, parseErr := parseID(*req.SupplierID, "supplier")
			if parseErr != nil {
				return VehicleResponse{}, parseErr
			}
			vehicle.SupplierID = &supplierID
		}
	}
	if req.PurchasePrice != nil {
		price, parseErr := parsePositiveAmount(*req.PurchasePrice, "purchase_price")
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.PurchasePrice = price
	}
	if req.ListPrice != nil {
		price, parseErr := parsePositiveAmount(*req.ListPrice, "list_price")
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.ListPrice = price
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}
	if req.PurchaseDate != nil {
		date, parseErr := parseDate(*req.PurchaseDate, "purchase_date")
		if parseErr != nil {
			return VehicleResponse{}, parseErr
		}
		vehicle.PurchaseDate = date
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.vehicleRepo.Update(txCtx, vehicle); updateErr != nil {
			return fmt.Errorf("failed to update vehicle: %w", apperror.FromDB(updateErr, "vehicle"))
		}
		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionUpdateVehicle,
			EntityID:   vehicle.ID.String(),
			EntityName: vehicle.Make + " " + vehicle.Model + " (" + vehicle.Plate + ")",
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VehicleResponse{}, err
	}

	return s.toVehicleResponse(ctx, vehicle)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, userID, id string) error {
	uid, err := parseID(id, "vehicle")
	if err != nil {
		return err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, uid)
	if err != nil {
		return apperror.FromDB(err, "vehicle")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.vehicleRepo.Delete(txCtx, uid); delErr != nil {
			return apperror.FromDB(delErr, "vehicle")
		}
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionDeleteVehicle,
			EntityID:   uid.String(),
			EntityName: vehicle.Make + " " + vehicle.Model + " (" + vehicle.Plate + ")",
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (VehicleResponse, error) {
	uid, err := parseID(id, "vehicle")
	if err != nil {
		return VehicleResponse{}, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, uid)
	if err != nil {
		return VehicleResponse{}, apperror.FromDB(err, "vehicle")
	}
	return s.toVehicleResponse(ctx, vehicle)
}

func (s *vehicleService) ListVehicles(ctx context.Context, status, search string, page, limit int) ([]VehicleResponse, int64, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	res := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		resp, mapErr := s.toVehicleResponse(ctx, &vehicles[i])
		if mapErr != nil {
			return nil, 0, mapErr
		}
		res = append(res, resp)
	}
	return res, total, nil
}

var maintenanceTransitions = map[string]bool{
	model.VehicleAvailable:     true,
	model.VehicleInMaintenance: true,
}

func (s *vehicleService) ChangeStatus(ctx context.Context, userID, id, status string) (VehicleResponse, error) {
	if !maintenanceTransitions[status] {
		return VehicleResponse{}, apperror.Validationf("status must be AVAILABLE or IN_MAINTENANCE")
	}
	uid, err := parseID(id, "vehicle")
	if err != nil {
		return VehicleResponse{}, err
	}

	var vehicle *model.Vehicle
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		vehicle, txErr = s.vehicleRepo.FindByIDForUpdate(txCtx, uid)
		if txErr != nil {
			return apperror.FromDB(txErr, "vehicle")
		}
		if vehicle.Status == model.VehicleSold {
			return apperror.Conflictf("vehicle %s is already sold", vehicle.Plate)
		}
		if vehicle.Status == status {
			return nil
		}
		if txErr = s.vehicleRepo.UpdateStatus(txCtx, uid, status); txErr != nil {
			return fmt.Errorf("failed to update status: %w", txErr)
		}
		details, _ := json.Marshal(map[string]string{"from": vehicle.Status, "to": status})
		audit := &model.AuditLog{
			UserID:     auditUserID(userID),
			Action:     model.ActionChangeStatus,
			EntityID:   uid.String(),
			EntityName: vehicle.Plate,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		vehicle.Status = status
		return nil
	})
	if err != nil {
		return VehicleResponse{}, err
	}

	s.broadcastStatusChange(vehicle)

	return s.toVehicleResponse(ctx, vehicle)
}

// broadcastStatusChange pushes an inventory event after the status commit.
// Best-effort: a nil hub (tests) is skipped.
func (s *vehicleService) broadcastStatusChange(vehicle *model.Vehicle) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(ws.InventoryEvent{
		Event: ws.EventVehicleStatusChanged,
		Data: map[string]interface{}{
			"vehicle_id": vehicle.ID.String(),
			"plate":      vehicle.Plate,
			"status":     vehicle.Status,
		},
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func (s *vehicleService) AddImages(ctx context.Context, id string, req AddImagesRequest) ([]VehicleImageResponse, error) {
	uid, err := parseID(id, "vehicle")
	if err != nil {
		return nil, err
	}
	if _, err = s.vehicleRepo.FindByID(ctx, uid); err != nil {
		return nil, apperror.FromDB(err, "vehicle")
	}

	var images []model.VehicleImage
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, txErr := s.imageRepo.CountByVehicle(txCtx, uid)
		if txErr != nil {
			return fmt.Errorf("failed to count images: %w", txErr)
		}
		hasPrincipal, txErr := s.imageRepo.HasPrincipal(txCtx, uid)
		if txErr != nil {
			return fmt.Errorf("failed to check principal image: %w", txErr)
		}

		images = make([]model.VehicleImage, 0, len(req.Images))
		for idx, payload := range req.Images {
			images = append(images, model.VehicleImage{
				VehicleID:   uid,
				URL:         payload.URL,
				Description: payload.Description,
				Principal:   !hasPrincipal && idx == 0,
				SortOrder:   int(existing) + idx,
			})
		}
		if txErr = s.imageRepo.CreateBatch(txCtx, images); txErr != nil {
			return fmt.Errorf("failed to create images: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]VehicleImageResponse, 0, len(images))
	for _, img := range images {
		res = append(res, toImageResponse(img))
	}
	return res, nil
}

func (s *vehicleService) MarkPrincipalImage(ctx context.Context, vehicleID, imageID string) error {
	vid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return err
	}
	iid, err := parseID(imageID, "image")
	if err != nil {
		return err
	}

	// Clear-then-set inside one transaction: exactly one principal image
	// survives, and running it twice with the same image is a no-op.
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		image, txErr := s.imageRepo.FindByID(txCtx, iid)
		if txErr != nil {
			return apperror.FromDB(txErr, "image")
		}
		if image.VehicleID != vid {
			return apperror.Validationf("image does not belong to this vehicle")
		}
		if txErr = s.imageRepo.ClearPrincipal(txCtx, vid); txErr != nil {
			return fmt.Errorf("failed to clear principal flag: %w", txErr)
		}
		if txErr = s.imageRepo.SetPrincipal(txCtx, iid); txErr != nil {
			return fmt.Errorf("failed to set principal flag: %w", txErr)
		}
		return nil
	})
}

func (s *vehicleService) DeleteImage(ctx context.Context, vehicleID, imageID string) error {
	vid, err := parseID(vehicleID, "vehicle")
	if err != nil {
		return err
	}
	iid, err := parseID(imageID, "image")
	if err != nil {
		return err
	}
	image, err := s.imageRepo.FindByID(ctx, iid)
	if err != nil {
		return apperror.FromDB(err, "image")
	}
	if image.VehicleID != vid {
		return apperror.Validationf("image does not belong to this vehicle")
	}
	return s.imageRepo.Delete(ctx, iid)
}

// --- Response mapping ---

func toImageResponse(img model.VehicleImage) VehicleImageResponse {
	return VehicleImageResponse{
		ID:          img.ID.String(),
		URL:         img.URL,
		Description: img.Description,
		Principal:   img.Principal,
		SortOrder:   img.SortOrder,
	}
}

func (s *vehicleService) toVehicleResponse(ctx context.Context, v *model.Vehicle) (VehicleResponse, error) {
	total, err := s.finance.TotalExpenses(ctx, v.ID)
	if err != nil {
		return VehicleResponse{}, err
	}
	projected := v.ListPrice.Sub(v.PurchasePrice).Sub(total)

	realized, err := s.finance.RealizedProfit(ctx, v.ID)
	if err != nil {
		return VehicleResponse{}, err
	}
	var realizedStr *string
	if realized != nil {
		str := realized.StringFixed(2)
		realizedStr = &str
	}

	resp := VehicleResponse{
		ID:              v.ID.String(),
		Make:            v.Make,
		Model:           v.Model,
		Year:            v.Year,
		Plate:           v.Plate,
		VIN:             v.VIN,
		Color:           v.Color,
		Mileage:         v.Mileage,
		PurchasePrice:   v.PurchasePrice.StringFixed(2),
		ListPrice:       v.ListPrice.StringFixed(2),
		Status:          v.Status,
		Notes:           v.Notes,
		PurchaseDate:    v.PurchaseDate.Format(dateLayout),
		TotalExpenses:   total.StringFixed(2),
		ProjectedProfit: projected.StringFixed(2),
		RealizedProfit:  realizedStr,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
	if v.SupplierID != nil {
		str := v.SupplierID.String()
		resp.SupplierID = &str
	}
	if v.Supplier != nil {
		resp.SupplierName = v.Supplier.Name
	}
	for _, img := range v.Images {
		resp.Images = append(resp.Images, toImageResponse(img))
	}
	return resp, nil
}
