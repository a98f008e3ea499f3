package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
	auditService  service.AuditService
}

func NewReportHandler(reportService service.ReportService, auditService service.AuditService) *ReportHandler {
	return &ReportHandler{reportService: reportService, auditService: auditService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/reports/summary", middleware.RequireStaff(), h.GetSummary)
	router.GET("/api/audit-logs", middleware.RequireRole(model.RoleAdmin), h.GetAuditLogs)
}

// GetSummary aggregates case volume, revenue and agent rankings for the
// requested window.
// @Summary      Reporting summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        window  query  string  false  "7d, 30d, 90d or all"  default(all)
// @Success      200  {object}  response.Response{data=model.ReportSummary}
// @Failure      400  {object}  response.Response
// @Router       /api/reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	summary, err := h.reportService.GetSummary(c.Request.Context(), c.Query("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

func (h *ReportHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch audit logs"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}
