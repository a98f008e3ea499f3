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

type InspectionHandler struct {
	inspectionService service.InspectionService
}

func NewInspectionHandler(inspectionService service.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspectionService: inspectionService}
}

func (h *InspectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	inspections := router.Group("/api/inspections")
	{
		inspections.PUT("/case/:caseId/schedule", middleware.RequireStaff(), h.Schedule)
		inspections.GET("/mine", middleware.RequireRole(model.RoleInspector), h.ListMine)
		inspections.GET("/:id", middleware.RequireStaff(), h.GetByID)
		inspections.PUT("/:id/submit", middleware.RequireRole(model.RoleInspector), h.SubmitByID)

		// Capability-token routes: the token is the whole authorization.
		inspections.GET("/token/:token", h.GetByToken)
		inspections.PUT("/token/:token/start", h.Start)
		inspections.PUT("/token/:token/submit", h.Submit)
	}
}

// Schedule fills in when/where and optionally assigns an inspector.
// @Summary      Schedule inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        caseId   path      string                             true  "Case ID"
// @Param        payload  body      service.ScheduleInspectionRequest  true  "Schedule Payload"
// @Success      200      {object}  response.Response{data=model.Inspection}
// @Failure      400      {object}  response.Response
// @Router       /api/inspections/case/{caseId}/schedule [put]
func (h *InspectionHandler) Schedule(c *gin.Context) {
	var req service.ScheduleInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inspection, err := h.inspectionService.Schedule(c.Request.Context(), middleware.UserID(c), c.Param("caseId"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}

func (h *InspectionHandler) ListMine(c *gin.Context) {
	params := pagination.Parse(c)

	inspections, total, err := h.inspectionService.ListForInspector(c.Request.Context(), middleware.UserID(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch inspections"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, inspections, total, params.Page, params.Limit))
}

func (h *InspectionHandler) GetByID(c *gin.Context) {
	inspection, err := h.inspectionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}

func (h *InspectionHandler) GetByToken(c *gin.Context) {
	inspection, err := h.inspectionService.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}

func (h *InspectionHandler) Start(c *gin.Context) {
	inspection, err := h.inspectionService.Start(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}

// SubmitByID lets a logged-in inspector complete one of their inspections
// without the link token.
func (h *InspectionHandler) SubmitByID(c *gin.Context) {
	var req service.SubmitInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	inspection, err := h.inspectionService.SubmitByID(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}

// Submit stores captured sections and completes the inspection. A completed
// inspection rejects further submits.
func (h *InspectionHandler) Submit(c *gin.Context) {
	var req service.SubmitInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	inspection, err := h.inspectionService.SubmitByToken(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspection))
}
