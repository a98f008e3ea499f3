package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
)

// ErrNoOffer is returned by funnel steps that require a generated offer.
var ErrNoOffer = errors.New("no offer has been generated for this submission")

// --- DTOs, one per funnel step ---

type CreateSubmissionRequest struct {
	VIN          string `json:"vin"`
	LicensePlate string `json:"license_plate"`
	PlateState   string `json:"plate_state"`
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Trim         string `json:"trim"`
}

type UpdateBasicsRequest struct {
	Basics map[string]interface{} `json:"basics" binding:"required"`
}

type UpdateConditionRequest struct {
	Condition map[string]interface{} `json:"condition" binding:"required"`
	// Overall band used by offer pricing: excellent, good, fair, poor
	OverallCondition string `json:"overall_condition" binding:"required,oneof=excellent good fair poor"`
}

type UpdateContactRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdateMobileRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

type UpdatePayoutMethodRequest struct {
	PayoutMethod string `json:"payout_method" binding:"required,oneof=check ach instant"`
}

type UpdateAppointmentRequest struct {
	AppointmentAt time.Time `json:"appointment_at" binding:"required"`
}

// --- Interface ---

type SubmissionService interface {
	Create(ctx context.Context, req CreateSubmissionRequest) (*model.VehicleSubmission, error)
	GetByID(ctx context.Context, id string) (*model.VehicleSubmission, error)
	List(ctx context.Context, page, limit int) ([]model.VehicleSubmission, int64, error)
	UpdateBasics(ctx context.Context, id string, req UpdateBasicsRequest) (*model.VehicleSubmission, error)
	UpdateCondition(ctx context.Context, id string, req UpdateConditionRequest) (*model.VehicleSubmission, error)
	UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (*model.VehicleSubmission, error)
	UpdateMobile(ctx context.Context, id string, req UpdateMobileRequest) (*model.VehicleSubmission, error)
	UpdatePayoutMethod(ctx context.Context, id string, req UpdatePayoutMethodRequest) (*model.VehicleSubmission, error)
	UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) (*model.VehicleSubmission, error)
	ConfirmSale(ctx context.Context, id string) (*model.VehicleSubmission, error)
}

type submissionService struct {
	repo      repository.SubmissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewSubmissionService(
	repo repository.SubmissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

// --- Implementation ---

func (s *submissionService) Create(ctx context.Context, req CreateSubmissionRequest) (*model.VehicleSubmission, error) {
	if req.VIN == "" && req.LicensePlate == "" {
		return nil, errors.New("vin or license_plate is required")
	}
	if req.VIN != "" && len(req.VIN) != 17 {
		return nil, errors.New("vin must be 17 characters")
	}
	if req.LicensePlate != "" && req.PlateState == "" {
		return nil, errors.New("plate_state is required with license_plate")
	}

	submission := &model.VehicleSubmission{
		VIN:          req.VIN,
		LicensePlate: req.LicensePlate,
		PlateState:   req.PlateState,
		Year:         req.Year,
		Make:         req.Make,
		Model:        req.Model,
		Trim:         req.Trim,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, submission); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			Action:     model.ActionCreateSubmission,
			EntityID:   submission.ID.String(),
			EntityName: fmt.Sprintf("%d %s %s", req.Year, req.Make, req.Model),
		})
	})
	if err != nil {
		return nil, err
	}

	return submission, nil
}

func (s *submissionService) GetByID(ctx context.Context, id string) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}
	return submission, nil
}

func (s *submissionService) List(ctx context.Context, page, limit int) ([]model.VehicleSubmission, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *submissionService) UpdateBasics(ctx context.Context, id string, req UpdateBasicsRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}

	payload, err := json.Marshal(req.Basics)
	if err != nil {
		return nil, fmt.Errorf("invalid basics payload: %w", err)
	}
	submission.Basics = string(payload)

	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) UpdateCondition(ctx context.Context, id string, req UpdateConditionRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}

	condition := req.Condition
	condition["overall"] = req.OverallCondition
	payload, err := json.Marshal(condition)
	if err != nil {
		return nil, fmt.Errorf("invalid condition payload: %w", err)
	}
	submission.Condition = string(payload)

	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// UpdateContact captures the email and generates the instant offer exactly
// once. A second pass through the contact step keeps the original offer.
func (s *submissionService) UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}

	submission.Email = req.Email

	generated := false
	if !submission.OfferGenerated {
		amount, expiry := GenerateOffer(submission.Year, s.overallCondition(submission), time.Now())
		submission.OfferAmount = &amount
		submission.OfferExpiresAt = &expiry
		submission.OfferGenerated = true
		generated = true
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, submission); err != nil {
			return fmt.Errorf("failed to update contact: %w", err)
		}
		if generated {
			return s.auditRepo.Create(txCtx, &model.AuditLog{
				Action:   model.ActionGenerateOffer,
				EntityID: submission.ID.String(),
				Details:  fmt.Sprintf(`{"amount":"%s"}`, submission.OfferAmount.String()),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if generated {
		s.hub.Publish(ws.EventOfferGenerated, map[string]interface{}{
			"submission_id": submission.ID.String(),
			"amount":        submission.OfferAmount.String(),
		})
	}

	return submission, nil
}

// overallCondition reads the pricing band back out of the stored condition payload.
func (s *submissionService) overallCondition(submission *model.VehicleSubmission) string {
	if submission.Condition == "" {
		return "good"
	}
	var condition map[string]interface{}
	if err := json.Unmarshal([]byte(submission.Condition), &condition); err != nil {
		return "good"
	}
	if overall, ok := condition["overall"].(string); ok && overall != "" {
		return overall
	}
	return "good"
}

func (s *submissionService) UpdateMobile(ctx context.Context, id string, req UpdateMobileRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}
	if !submission.OfferGenerated {
		return nil, ErrNoOffer
	}

	submission.Mobile = req.Mobile
	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) UpdatePayoutMethod(ctx context.Context, id string, req UpdatePayoutMethodRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}
	if !submission.SaleConfirmed {
		return nil, errors.New("sale has not been confirmed")
	}
	if !model.ValidPayoutMethod(req.PayoutMethod) {
		return nil, fmt.Errorf("unsupported payout method %q", req.PayoutMethod)
	}

	submission.PayoutMethod = req.PayoutMethod
	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}
	if !submission.SaleConfirmed {
		return nil, errors.New("sale has not been confirmed")
	}

	submission.AppointmentAt = &req.AppointmentAt
	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// ConfirmSale locks in the offer. Requires a live, unexpired offer.
func (s *submissionService) ConfirmSale(ctx context.Context, id string) (*model.VehicleSubmission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("submission not found")
	}
	if !submission.OfferGenerated || submission.OfferAmount == nil {
		return nil, ErrNoOffer
	}
	if submission.OfferExpiresAt != nil && submission.OfferExpiresAt.Before(time.Now()) {
		return nil, errors.New("offer has expired")
	}
	if submission.SaleConfirmed {
		return submission, nil
	}

	submission.SaleConfirmed = true
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, submission); err != nil {
			return fmt.Errorf("failed to confirm sale: %w", err)
		}
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			Action:   model.ActionConfirmSale,
			EntityID: submission.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return submission, nil
}
