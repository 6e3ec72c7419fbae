package handler

import (
	"net/http"

	"dealership/internal/middleware"
	"dealership/internal/model"
	"dealership/internal/service"
	"dealership/pkg/pagination"
	"dealership/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
	expenseService service.ExpenseService
}

func NewVehicleHandler(vehicleService service.VehicleService, expenseService service.ExpenseService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService, expenseService: expenseService}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", anyStaff, h.ListVehicles)
		vehicles.GET("/:id", anyStaff, h.GetVehicle)
		vehicles.POST("", anyStaff, h.CreateVehicle)
		vehicles.PUT("/:id", anyStaff, h.UpdateVehicle)
		vehicles.DELETE("/:id", managers, h.DeleteVehicle)
		vehicles.PATCH("/:id/status", anyStaff, h.ChangeStatus)

		vehicles.GET("/:id/expenses", anyStaff, h.ListExpenses)
		vehicles.POST("/:id/expenses", anyStaff, h.CreateExpense)

		vehicles.POST("/:id/images", anyStaff, h.AddImages)
		vehicles.PATCH("/:id/images/:imageId/principal", anyStaff, h.MarkPrincipalImage)
		vehicles.DELETE("/:id/images/:imageId", anyStaff, h.DeleteImage)
	}
}

// ListVehicles handles GET /vehicles with status and search filters
// @Summary      List vehicles
// @Description  Retrieves a paginated vehicle list, filterable by status and a free-text search over make, model and plate
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (AVAILABLE, SOLD, IN_MAINTENANCE)"
// @Param        search  query     string  false  "Search over make, model and plate"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.PaginatedResponse
// @Failure      500     {object}  response.Response
// @Router       /vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")
	search := c.Query("search")

	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), status, search, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vehicles, params.Page, params.Limit, total))
}

// GetVehicle handles GET /vehicles/:id
// @Summary      Get vehicle
// @Description  Fetch a single vehicle with its images, expense total and profit figures
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      404  {object}  response.Response
// @Router       /vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// CreateVehicle handles POST /vehicles
// @Summary      Register a vehicle
// @Description  Registers a purchased vehicle into stock, optionally with intake images
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVehicleRequest  true  "Vehicle payload"
// @Success      201      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), contextUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// UpdateVehicle handles PUT /vehicles/:id
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), contextUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// DeleteVehicle handles DELETE /vehicles/:id
// @Summary      Delete vehicle
// @Description  Removes a vehicle; fails with 409 when a sale or protected record still references it
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), contextUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Vehicle deleted successfully"))
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus handles PATCH /vehicles/:id/status
// @Summary      Change vehicle status
// @Description  Moves a vehicle between AVAILABLE and IN_MAINTENANCE. Sold vehicles cannot change status.
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Vehicle ID"
// @Param        payload  body      changeStatusRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /vehicles/{id}/status [patch]
func (h *VehicleHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.ChangeStatus(c.Request.Context(), contextUserID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// ListExpenses handles GET /vehicles/:id/expenses
func (h *VehicleHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.expenseService.ListByVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expenses))
}

// CreateExpense handles POST /vehicles/:id/expenses
// @Summary      Record an expense
// @Description  Records a reconditioning or operating expense against a vehicle
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense payload"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /vehicles/{id}/expenses [post]
func (h *VehicleHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), contextUserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// AddImages handles POST /vehicles/:id/images
func (h *VehicleHandler) AddImages(c *gin.Context) {
	var req service.AddImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	images, err := h.vehicleService.AddImages(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, images))
}

// MarkPrincipalImage handles PATCH /vehicles/:id/images/:imageId/principal
// @Summary      Mark principal image
// @Description  Makes the given image the vehicle's single principal image
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Vehicle ID"
// @Param        imageId  path      string  true  "Image ID"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /vehicles/{id}/images/{imageId}/principal [patch]
func (h *VehicleHandler) MarkPrincipalImage(c *gin.Context) {
	if err := h.vehicleService.MarkPrincipalImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Principal image updated"))
}

// DeleteImage handles DELETE /vehicles/:id/images/:imageId
func (h *VehicleHandler) DeleteImage(c *gin.Context) {
	if err := h.vehicleService.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Image deleted successfully"))
}
