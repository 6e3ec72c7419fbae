package handler

import (
	"net/http"
	"time"

	"dealership/internal/middleware"
	"dealership/internal/model"
	"dealership/internal/service"
	"dealership/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyStaff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	router.GET("/dashboard", anyStaff, h.Dashboard)

	reports := router.Group("/reports")
	{
		reports.GET("/general", managers, h.GeneralReport)
		reports.GET("/vehicle-profit", managers, h.VehicleProfitReport)
	}
}

func parseDateWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

// Dashboard handles GET /dashboard
// @Summary      Dashboard
// @Description  Stock counts, sale and expense totals and recent activity, over an explicit date window or a quick period
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from    query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to      query     string  false  "End date (YYYY-MM-DD)"
// @Param        period  query     string  false  "Quick period: today, week, month or year"
// @Success      200     {object}  response.Response{data=service.DashboardResponse}
// @Failure      400     {object}  response.Response
// @Router       /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	from, to, err := parseDateWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid date: "+err.Error()))
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), from, to, c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// GeneralReport handles GET /reports/general
// @Summary      General report
// @Description  Sale, trade-in, expense and profit totals over a date window, with the matching sales
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.GeneralReportResponse}
// @Failure      400   {object}  response.Response
// @Router       /reports/general [get]
func (h *ReportHandler) GeneralReport(c *gin.Context) {
	from, to, err := parseDateWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid date: "+err.Error()))
		return
	}

	report, err := h.reportService.GeneralReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// VehicleProfitReport handles GET /reports/vehicle-profit
func (h *ReportHandler) VehicleProfitReport(c *gin.Context) {
	filter, err := parseSaleFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid filter: "+err.Error()))
		return
	}

	rows, err := h.reportService.VehicleProfitReport(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
