package handler

import (
	"net/http"

	"dealership/internal/middleware"
	"dealership/internal/model"
	"dealership/internal/service"
	"dealership/pkg/response"

	"github.com/gin-gonic/gin"
)

// LookupHandler serves the expense type and payment method reference tables.
type LookupHandler struct {
	lookupService service.LookupService
}

func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

func (h *LookupHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	types := router.Group("/expense-types")
	{
		types.GET("", anyStaff, h.ListExpenseTypes)
		types.POST("", managers, h.CreateExpenseType)
		types.PUT("/:id", managers, h.UpdateExpenseType)
		types.DELETE("/:id", managers, h.DeleteExpenseType)
	}

	methods := router.Group("/payment-methods")
	{
		methods.GET("", anyStaff, h.ListPaymentMethods)
		methods.POST("", managers, h.CreatePaymentMethod)
		methods.PUT("/:id", managers, h.UpdatePaymentMethod)
		methods.DELETE("/:id", managers, h.DeletePaymentMethod)
	}
}

// --- Expense types ---

// ListExpenseTypes handles GET /expense-types
func (h *LookupHandler) ListExpenseTypes(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	types, err := h.lookupService.ListExpenseTypes(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, types))
}

// CreateExpenseType handles POST /expense-types
func (h *LookupHandler) CreateExpenseType(c *gin.Context) {
	var req service.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	t, err := h.lookupService.CreateExpenseType(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, t))
}

// UpdateExpenseType handles PUT /expense-types/:id
func (h *LookupHandler) UpdateExpenseType(c *gin.Context) {
	var req service.UpdateLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	t, err := h.lookupService.UpdateExpenseType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, t))
}

// DeleteExpenseType handles DELETE /expense-types/:id
// @Summary      Delete expense type
// @Description  Removes an expense type; fails with 409 when expenses still reference it
// @Tags         lookups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense type ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /expense-types/{id} [delete]
func (h *LookupHandler) DeleteExpenseType(c *gin.Context) {
	if err := h.lookupService.DeleteExpenseType(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Expense type deleted successfully"))
}

// --- Payment methods ---

// ListPaymentMethods handles GET /payment-methods
func (h *LookupHandler) ListPaymentMethods(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	methods, err := h.lookupService.ListPaymentMethods(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, methods))
}

// CreatePaymentMethod handles POST /payment-methods
func (h *LookupHandler) CreatePaymentMethod(c *gin.Context) {
	var req service.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	m, err := h.lookupService.CreatePaymentMethod(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, m))
}

// UpdatePaymentMethod handles PUT /payment-methods/:id
func (h *LookupHandler) UpdatePaymentMethod(c *gin.Context) {
	var req service.UpdateLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	m, err := h.lookupService.UpdatePaymentMethod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, m))
}

// DeletePaymentMethod handles DELETE /payment-methods/:id
func (h *LookupHandler) DeletePaymentMethod(c *gin.Context) {
	if err := h.lookupService.DeletePaymentMethod(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Payment method deleted successfully"))
}
