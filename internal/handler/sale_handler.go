package handler

import (
	"net/http"
	"time"

	"dealership/internal/middleware"
	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/internal/service"
	"dealership/pkg/pagination"
	"dealership/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)

	sales := router.Group("/sales")
	{
		sales.GET("", anyStaff, h.ListSales)
		sales.GET("/:id", anyStaff, h.GetSale)
		sales.POST("", anyStaff, h.SettleSale)
	}
}

// parseSaleFilter extracts the optional from/to/vehicle/customer query filters.
func parseSaleFilter(c *gin.Context) (repository.SaleFilter, error) {
	var filter repository.SaleFilter
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if raw := c.Query("vehicle_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.VehicleID = &id
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.CustomerID = &id
	}
	return filter, nil
}

// ListSales handles GET /sales with date and reference filters
// @Summary      List sales
// @Description  Retrieves a paginated sale list, filterable by date window, vehicle and customer
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        from         query     string  false  "Start date (YYYY-MM-DD, inclusive)"
// @Param        to           query     string  false  "End date (YYYY-MM-DD, inclusive)"
// @Param        vehicle_id   query     string  false  "Filter by vehicle"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.PaginatedResponse
// @Failure      400          {object}  response.Response
// @Router       /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	filter, err := parseSaleFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid filter: "+err.Error()))
		return
	}
	params := pagination.Parse(c)

	sales, total, err := h.saleService.ListSales(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, sales, params.Page, params.Limit, total))
}

// GetSale handles GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// SettleSale handles POST /sales
// @Summary      Settle a sale
// @Description  Finalizes a sale atomically: records the sale, marks the vehicle sold and moves any trade-in into stock
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SettleSaleRequest  true  "Sale payload"
// @Success      201      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /sales [post]
func (h *SaleHandler) SettleSale(c *gin.Context) {
	var req service.SettleSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sale, err := h.saleService.SettleSale(c.Request.Context(), contextUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}
