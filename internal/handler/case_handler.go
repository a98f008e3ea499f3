package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CaseHandler struct {
	caseService service.CaseService
}

func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

func (h *CaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	cases := router.Group("/api/cases")
	{
		cases.GET("", middleware.RequireStaff(), h.ListCases)
		cases.POST("", middleware.RequireStaff(), h.CreateCase)
		cases.GET("/:id", middleware.RequireAuth(), h.GetCase)
		cases.PATCH("/:id/stage", middleware.RequireStaff(), h.AdvanceStage)
		cases.PUT("/:id/quote", middleware.RequireStaff(), h.SubmitQuote)
		cases.PUT("/:id/decision", middleware.RequireAuth(), h.DecideOffer)
		cases.PUT("/:id/cancel", middleware.RequireStaff(), h.CancelCase)
		cases.PUT("/:id/payment", middleware.RequireStaff(), h.RecordPayment)
		cases.POST("/:id/documents", middleware.RequireAuth(), h.SignDocument)
		cases.GET("/:id/documents", middleware.RequireAuth(), h.ListSignedDocuments)
	}
}

// @Summary      Create case
// @Description  Opens a new acquisition case from customer intake
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCaseRequest  true  "Intake Payload"
// @Success      201      {object}  response.Response{data=model.Case}
// @Failure      400      {object}  response.Response
// @Router       /api/cases [post]
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req service.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cs, err := h.caseService.CreateCase(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cs))
}

// @Summary      List cases
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        status    query  string  false  "Filter by status"
// @Param        agent_id  query  string  false  "Filter by assigned agent"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/cases [get]
func (h *CaseHandler) ListCases(c *gin.Context) {
	params := pagination.Parse(c)

	cases, total, err := h.caseService.ListCases(c.Request.Context(), repository.CaseFilter{
		Status:  c.Query("status"),
		AgentID: c.Query("agent_id"),
		Page:    params.Page,
		Limit:   params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch cases"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, cases, total, params.Page, params.Limit))
}

// GetCase returns the case plus the stage-access info for the caller's role,
// which the client uses to gate wizard navigation.
func (h *CaseHandler) GetCase(c *gin.Context) {
	cs, info, err := h.caseService.GetCase(c.Request.Context(), c.Param("id"), middleware.UserRole(c))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"case":   cs,
		"access": info,
	}))
}

// AdvanceStage moves the case forward. The caller's role must have access to
// the target stage; backward targets return the record unchanged.
// @Summary      Advance case stage
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Case ID"
// @Param        payload  body      service.AdvanceStageRequest  true  "Target stage"
// @Success      200      {object}  response.Response{data=model.Case}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/cases/{id}/stage [patch]
func (h *CaseHandler) AdvanceStage(c *gin.Context) {
	var req service.AdvanceStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	role := middleware.UserRole(c)
	if req.Stage > model.StageSummary && req.Stage != model.StageCompletion {
		if !service.IsStageAccessible(role, req.Stage, model.MaxStage) {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Your role cannot open this stage"))
			return
		}
	}

	cs, err := h.caseService.AdvanceStage(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Stage)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

func (h *CaseHandler) SubmitQuote(c *gin.Context) {
	var req service.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	cs, err := h.caseService.SubmitQuote(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

func (h *CaseHandler) DecideOffer(c *gin.Context) {
	var req service.OfferDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	cs, err := h.caseService.DecideOffer(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

func (h *CaseHandler) CancelCase(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	cs, err := h.caseService.CancelCase(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

func (h *CaseHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	cs, err := h.caseService.RecordPayment(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cs))
}

// SignDocument stores a signed paperwork artifact: document URL, page and the
// captured signature image with its normalized position.
func (h *CaseHandler) SignDocument(c *gin.Context) {
	var req service.SignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.caseService.SignDocument(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

func (h *CaseHandler) ListSignedDocuments(c *gin.Context) {
	docs, err := h.caseService.ListSignedDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch documents"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}
