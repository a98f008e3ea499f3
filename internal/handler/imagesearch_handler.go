package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ImageSearchHandler struct {
	searchService service.ImageSearchService
}

func NewImageSearchHandler(searchService service.ImageSearchService) *ImageSearchHandler {
	return &ImageSearchHandler{searchService: searchService}
}

func (h *ImageSearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/vehicles/image-search", middleware.RequireStaff(), h.Search)
}

// Search fetches reference photos for a vehicle description.
// @Summary      Vehicle image lookup
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Search query, e.g. year make model"
// @Success      200  {object}  response.Response{data=[]service.VehicleImage}
// @Failure      503  {object}  response.Response
// @Router       /api/vehicles/image-search [get]
func (h *ImageSearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "q is required"))
		return
	}

	if !h.searchService.Configured() {
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "image search is not configured"))
		return
	}

	images, err := h.searchService.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, images))
}
