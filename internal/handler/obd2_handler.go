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

type DiagnosticCodeHandler struct {
	codeService service.DiagnosticCodeService
}

func NewDiagnosticCodeHandler(codeService service.DiagnosticCodeService) *DiagnosticCodeHandler {
	return &DiagnosticCodeHandler{codeService: codeService}
}

func (h *DiagnosticCodeHandler) RegisterRoutes(router *gin.RouterGroup) {
	codes := router.Group("/api/obd2-codes")
	codes.Use(middleware.RequireStaff())
	{
		codes.GET("", h.List)
		codes.GET("/:id", h.GetByID)
		codes.POST("", middleware.RequireRole(model.RoleAdmin), h.Create)
		codes.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.Update)
		codes.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// List returns a page of trouble codes. The envelope here is a published
// contract consumed by external tooling, so it does not use the standard
// response wrapper.
// @Summary      List OBD2 trouble codes
// @Tags         obd2
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Match against code or description"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/obd2-codes [get]
func (h *DiagnosticCodeHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	codes, total, err := h.codeService.List(c.Request.Context(), params.Page, params.Limit, params.Search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    codes,
		"pages":   params.Pages(total),
		"total":   total,
	})
}

func (h *DiagnosticCodeHandler) GetByID(c *gin.Context) {
	code, err := h.codeService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, code))
}

func (h *DiagnosticCodeHandler) Create(c *gin.Context) {
	var req service.CreateDiagnosticCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	code, err := h.codeService.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, code))
}

func (h *DiagnosticCodeHandler) Update(c *gin.Context) {
	var req service.UpdateDiagnosticCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	code, err := h.codeService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, code))
}

func (h *DiagnosticCodeHandler) Delete(c *gin.Context) {
	if err := h.codeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
