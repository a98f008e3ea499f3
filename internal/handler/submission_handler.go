package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// SubmissionHandler serves the self-serve instant-offer funnel. Every step
// except the staff listing is public: a funnel visitor has no account.
type SubmissionHandler struct {
	submissionService   service.SubmissionService
	verificationService service.VerificationService
}

func NewSubmissionHandler(submissionService service.SubmissionService, verificationService service.VerificationService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService:   submissionService,
		verificationService: verificationService,
	}
}

func (h *SubmissionHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	submissions := public.Group("/api/submissions")
	{
		submissions.POST("", h.Create)
		submissions.GET("/:id", h.GetByID)
		submissions.PUT("/:id/basics", h.UpdateBasics)
		submissions.PUT("/:id/condition", h.UpdateCondition)
		submissions.PUT("/:id/contact", h.UpdateContact)
		submissions.PUT("/:id/mobile", h.UpdateMobile)
		submissions.PUT("/:id/payout-method", h.UpdatePayoutMethod)
		submissions.PUT("/:id/appointment", h.UpdateAppointment)
		submissions.POST("/:id/confirm-sale", h.ConfirmSale)

		submissions.POST("/:id/verification/session", h.CreateVerificationSession)
	}
	public.GET("/api/verification/sessions/:sessionId", h.GetVerificationStatus)

	authed.GET("/api/submissions", middleware.RequireStaff(), h.List)
}

// Create opens a new funnel submission from a VIN or a plate+state pair.
// @Summary      Start a vehicle submission
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSubmissionRequest  true  "Vehicle identification"
// @Success      201      {object}  response.Response{data=model.VehicleSubmission}
// @Failure      400      {object}  response.Response
// @Router       /api/submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req service.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.submissionService.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, submission))
}

// GetByID returns the submission so the funnel can resume where it left off.
// @Summary      Get a submission
// @Tags         submissions
// @Produce      json
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=model.VehicleSubmission}
// @Failure      404  {object}  response.Response
// @Router       /api/submissions/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	submission, err := h.submissionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	submissions, total, err := h.submissionService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch submissions"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, submissions, total, params.Page, params.Limit))
}

func (h *SubmissionHandler) UpdateBasics(c *gin.Context) {
	var req service.UpdateBasicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	submission, err := h.submissionService.UpdateBasics(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) UpdateCondition(c *gin.Context) {
	var req service.UpdateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.submissionService.UpdateCondition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// UpdateContact captures the email and triggers offer generation. The response
// carries the offer amount and expiry when one was produced.
// @Summary      Submit contact email
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Submission ID"
// @Param        payload  body      service.UpdateContactRequest   true  "Contact"
// @Success      200      {object}  response.Response{data=model.VehicleSubmission}
// @Failure      400      {object}  response.Response
// @Router       /api/submissions/{id}/contact [put]
func (h *SubmissionHandler) UpdateContact(c *gin.Context) {
	var req service.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.submissionService.UpdateContact(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) UpdateMobile(c *gin.Context) {
	var req service.UpdateMobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	submission, err := h.submissionService.UpdateMobile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) UpdatePayoutMethod(c *gin.Context) {
	var req service.UpdatePayoutMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.submissionService.UpdatePayoutMethod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) UpdateAppointment(c *gin.Context) {
	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	submission, err := h.submissionService.UpdateAppointment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// ConfirmSale locks in the generated offer.
// @Summary      Confirm sale at the offered price
// @Tags         submissions
// @Produce      json
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=model.VehicleSubmission}
// @Failure      409  {object}  response.Response
// @Router       /api/submissions/{id}/confirm-sale [post]
func (h *SubmissionHandler) ConfirmSale(c *gin.Context) {
	submission, err := h.submissionService.ConfirmSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

func (h *SubmissionHandler) CreateVerificationSession(c *gin.Context) {
	session, err := h.verificationService.CreateSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// GetVerificationStatus is the polling endpoint behind the "verifying your
// identity" screen. Clients poll it on an interval until Terminal is true.
func (h *SubmissionHandler) GetVerificationStatus(c *gin.Context) {
	status, err := h.verificationService.GetStatus(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.stepError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// stepError maps service errors onto funnel status codes: unknown submissions
// are 404, out-of-order steps are 409, everything else is 400.
func (h *SubmissionHandler) stepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoOffer):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case err.Error() == "submission not found" || err.Error() == "verification session not found":
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case err.Error() == "sale has not been confirmed" || err.Error() == "offer has expired":
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	}
}
