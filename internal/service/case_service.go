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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCaseRequest struct {
	Customer struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"omitempty,email"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		City      string `json:"city"`
		State     string `json:"state"`
		Zip       string `json:"zip"`
	} `json:"customer" binding:"required"`
	Vehicle struct {
		VIN          string `json:"vin"`
		LicensePlate string `json:"license_plate"`
		Year         int    `json:"year"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		Trim         string `json:"trim"`
		Color        string `json:"color"`
		Mileage      int    `json:"mileage"`
	} `json:"vehicle"`
}

type AdvanceStageRequest struct {
	Stage int `json:"stage" binding:"min=0,max=8"`
}

type SubmitQuoteRequest struct {
	OfferAmount string `json:"offer_amount" binding:"required"`
	FinalPrice  string `json:"final_price"`
	Notes       string `json:"notes"`
}

type OfferDecisionRequest struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

type SignDocumentRequest struct {
	DocumentURL string  `json:"document_url" binding:"required,url"`
	Signature   string  `json:"signature" binding:"required"` // base64 PNG data URL
	Page        int     `json:"page" binding:"min=1"`
	PositionX   float64 `json:"position_x"`
	PositionY   float64 `json:"position_y"`
}

type RecordPaymentRequest struct {
	SalePrice    string `json:"sale_price" binding:"required"`
	PayoutMethod string `json:"payout_method" binding:"required,oneof=check ach instant"`
}

// CaseStageInfo annotates a case with what the requesting role may open.
type CaseStageInfo struct {
	AccessibleStages []int `json:"accessible_stages"`
	RedirectStage    int   `json:"redirect_stage"`
}

// --- Interface ---

type CaseService interface {
	CreateCase(ctx context.Context, userID string, req CreateCaseRequest) (*model.Case, error)
	GetCase(ctx context.Context, id string, role string) (*model.Case, *CaseStageInfo, error)
	ListCases(ctx context.Context, filter repository.CaseFilter) ([]model.Case, int64, error)
	AdvanceStage(ctx context.Context, userID, caseID string, target int) (*model.Case, error)
	SubmitQuote(ctx context.Context, userID, caseID string, req SubmitQuoteRequest) (*model.Case, error)
	DecideOffer(ctx context.Context, userID, caseID string, req OfferDecisionRequest) (*model.Case, error)
	CancelCase(ctx context.Context, userID, caseID string, reason string) (*model.Case, error)
	RecordPayment(ctx context.Context, userID, caseID string, req RecordPaymentRequest) (*model.Case, error)
	SignDocument(ctx context.Context, userID, caseID string, req SignDocumentRequest) (*model.SignedDocument, error)
	ListSignedDocuments(ctx context.Context, caseID string) ([]model.SignedDocument, error)
}

type caseService struct {
	caseRepo       repository.CaseRepository
	inspectionRepo repository.InspectionRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	hub            *ws.Hub
}

func NewCaseService(
	caseRepo repository.CaseRepository,
	inspectionRepo repository.InspectionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) CaseService {
	return &caseService{
		caseRepo:       caseRepo,
		inspectionRepo: inspectionRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		hub:            hub,
	}
}

// --- Implementation ---

func (s *caseService) audit(ctx context.Context, userID string, action, entityID, entityName string, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(details)
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}

func (s *caseService) CreateCase(ctx context.Context, userID string, req CreateCaseRequest) (*model.Case, error) {
	customer := &model.Customer{
		FirstName: req.Customer.FirstName,
		LastName:  req.Customer.LastName,
		Email:     req.Customer.Email,
		Phone:     req.Customer.Phone,
		Address:   req.Customer.Address,
		City:      req.Customer.City,
		State:     req.Customer.State,
		Zip:       req.Customer.Zip,
	}

	var created model.Case
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.SaveCustomer(txCtx, customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		cs := model.Case{
			CurrentStage:  model.StageIntake,
			Status:        model.CaseStatusNew,
			StageStatuses: model.NewStageStatusMap(),
			CustomerID:    customer.ID,
		}
		if agentID, err := uuid.Parse(userID); err == nil {
			cs.AgentID = &agentID
		}
		if err := s.caseRepo.Create(txCtx, &cs); err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}

		if req.Vehicle.VIN != "" || req.Vehicle.LicensePlate != "" || req.Vehicle.Make != "" {
			vehicle := model.Vehicle{
				CaseID:       cs.ID,
				VIN:          req.Vehicle.VIN,
				LicensePlate: req.Vehicle.LicensePlate,
				Year:         req.Vehicle.Year,
				Make:         req.Vehicle.Make,
				Model:        req.Vehicle.Model,
				Trim:         req.Vehicle.Trim,
				Color:        req.Vehicle.Color,
				Mileage:      req.Vehicle.Mileage,
			}
			if err := s.caseRepo.SaveVehicle(txCtx, &vehicle); err != nil {
				return fmt.Errorf("failed to create vehicle: %w", err)
			}
		}

		if err := s.audit(txCtx, userID, model.ActionCreateCase, cs.ID.String(), customer.FirstName+" "+customer.LastName, map[string]interface{}{
			"customer_id": customer.ID.String(),
		}); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		created = cs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.EventCaseCreated, map[string]interface{}{
		"case_id": created.ID.String(),
		"status":  created.Status,
	})

	return s.caseRepo.GetByID(ctx, created.ID.String())
}

func (s *caseService) GetCase(ctx context.Context, id string, role string) (*model.Case, *CaseStageInfo, error) {
	cs, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, errors.New("case not found")
	}

	info := &CaseStageInfo{
		AccessibleStages: StagesForRole(role),
		RedirectStage:    HighestAccessibleStage(role, cs.CurrentStage),
	}
	return cs, info, nil
}

func (s *caseService) ListCases(ctx context.Context, filter repository.CaseFilter) ([]model.Case, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.caseRepo.List(ctx, filter)
}

// AdvanceStage moves a case forward through the wizard. Backward targets leave
// the persisted record untouched: the stored currentStage is the max-progress
// watermark, and viewing an earlier stage is purely a client concern.
func (s *caseService) AdvanceStage(ctx context.Context, userID, caseID string, target int) (*model.Case, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}

	if model.TerminalCaseStatus(cs.Status) {
		return nil, fmt.Errorf("case is %s and can no longer advance", cs.Status)
	}

	transition, err := ComputeAdvance(cs.StageStatuses, cs.CurrentStage, target)
	if err != nil {
		return nil, err
	}
	if transition == nil {
		// Backward navigation: watermark preserved.
		return cs, nil
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		cs.CurrentStage = transition.ToStage
		cs.StageStatuses = transition.Statuses
		if cs.Status == model.CaseStatusNew {
			cs.Status = model.CaseStatusActive
		}
		if transition.Completed {
			cs.Status = model.CaseStatusCompleted
		}
		if err := s.caseRepo.Update(txCtx, cs); err != nil {
			return fmt.Errorf("failed to persist stage advance: %w", err)
		}

		// Reaching the scheduling stage opens the inspection record.
		if transition.ToStage == model.StageScheduling {
			_, err := s.inspectionRepo.GetByCaseID(txCtx, caseID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := s.createInspectionSkeleton(txCtx, cs); err != nil {
					return err
				}
			case err != nil:
				return fmt.Errorf("failed to look up inspection: %w", err)
			}
		}

		return s.audit(txCtx, userID, model.ActionAdvanceStage, cs.ID.String(), model.StageName(transition.ToStage), map[string]interface{}{
			"from_stage": transition.FromStage,
			"to_stage":   transition.ToStage,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.EventStageAdvanced, map[string]interface{}{
		"case_id":    cs.ID.String(),
		"from_stage": transition.FromStage,
		"to_stage":   transition.ToStage,
		"status":     cs.Status,
	})
	if transition.Completed {
		s.hub.Publish(ws.EventStatusChanged, map[string]interface{}{
			"case_id": cs.ID.String(),
			"status":  cs.Status,
		})
	}

	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) createInspectionSkeleton(ctx context.Context, cs *model.Case) error {
	customerName := ""
	customerPhone := ""
	if cs.Customer != nil {
		customerName = cs.Customer.FirstName + " " + cs.Customer.LastName
		customerPhone = cs.Customer.Phone
	}
	vehicleSummary := ""
	if cs.Vehicle != nil {
		vehicleSummary = fmt.Sprintf("%d %s %s %s", cs.Vehicle.Year, cs.Vehicle.Make, cs.Vehicle.Model, cs.Vehicle.Trim)
	}

	inspection := model.Inspection{
		CaseID:         cs.ID,
		Status:         model.InspectionScheduled,
		AccessToken:    uuid.NewString(),
		ScheduledAt:    time.Now().Add(24 * time.Hour),
		CustomerName:   customerName,
		CustomerPhone:  customerPhone,
		VehicleSummary: vehicleSummary,
	}
	if err := s.inspectionRepo.Create(ctx, &inspection); err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}
	return nil
}

func (s *caseService) SubmitQuote(ctx context.Context, userID, caseID string, req SubmitQuoteRequest) (*model.Case, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}
	if model.TerminalCaseStatus(cs.Status) {
		return nil, fmt.Errorf("case is %s and can no longer be quoted", cs.Status)
	}

	offer, err := decimal.NewFromString(req.OfferAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid offer_amount: %w", err)
	}
	if offer.IsNegative() {
		return nil, errors.New("offer_amount must not be negative")
	}

	var final *decimal.Decimal
	if req.FinalPrice != "" {
		parsed, err := decimal.NewFromString(req.FinalPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid final_price: %w", err)
		}
		final = &parsed
	}

	quote := cs.Quote
	if quote == nil {
		quote = &model.Quote{CaseID: cs.ID}
	}
	quote.OfferAmount = &offer
	quote.FinalPrice = final
	quote.Notes = req.Notes
	if quotedBy, err := uuid.Parse(userID); err == nil {
		quote.QuotedBy = &quotedBy
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.SaveQuote(txCtx, quote); err != nil {
			return fmt.Errorf("failed to save quote: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionSubmitQuote, cs.ID.String(), "", map[string]interface{}{
			"offer_amount": offer.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.caseRepo.GetByID(ctx, caseID)
}

// DecideOffer records the customer's decision. Acceptance carries the case
// from the decision stage into paperwork; a decline is terminal, moving the
// case to quote-declined.
func (s *caseService) DecideOffer(ctx context.Context, userID, caseID string, req OfferDecisionRequest) (*model.Case, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}
	if model.TerminalCaseStatus(cs.Status) {
		return nil, fmt.Errorf("case is %s; decision already final", cs.Status)
	}
	if cs.Quote == nil || cs.Quote.OfferAmount == nil {
		return nil, errors.New("no quote to decide on")
	}

	decision := cs.OfferDecision
	if decision == nil {
		decision = &model.OfferDecision{CaseID: cs.ID}
	}
	decision.Accepted = req.Accepted
	decision.Reason = req.Reason
	decision.DecidedAt = time.Now()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.SaveOfferDecision(txCtx, decision); err != nil {
			return fmt.Errorf("failed to save decision: %w", err)
		}
		if req.Accepted {
			// Acceptance moves the wizard into the paperwork stage.
			if cs.CurrentStage == model.StageDecision {
				transition, err := ComputeAdvance(cs.StageStatuses, cs.CurrentStage, model.StagePaperwork)
				if err != nil {
					return err
				}
				if transition != nil {
					cs.CurrentStage = transition.ToStage
					cs.StageStatuses = transition.Statuses
					if err := s.caseRepo.Update(txCtx, cs); err != nil {
						return fmt.Errorf("failed to advance case: %w", err)
					}
				}
			}
		} else {
			cs.Status = model.CaseStatusQuoteDeclined
			if err := s.caseRepo.Update(txCtx, cs); err != nil {
				return fmt.Errorf("failed to update case status: %w", err)
			}
		}
		return s.audit(txCtx, userID, model.ActionOfferDecision, cs.ID.String(), "", map[string]interface{}{
			"accepted": req.Accepted,
			"reason":   req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	if !req.Accepted {
		s.hub.Publish(ws.EventStatusChanged, map[string]interface{}{
			"case_id": cs.ID.String(),
			"status":  cs.Status,
		})
	}

	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) CancelCase(ctx context.Context, userID, caseID string, reason string) (*model.Case, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}
	if model.TerminalCaseStatus(cs.Status) {
		return nil, fmt.Errorf("case is already %s", cs.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		cs.Status = model.CaseStatusCancelled
		if err := s.caseRepo.Update(txCtx, cs); err != nil {
			return fmt.Errorf("failed to cancel case: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionCancelCase, cs.ID.String(), "", map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.EventStatusChanged, map[string]interface{}{
		"case_id": cs.ID.String(),
		"status":  cs.Status,
	})

	return cs, nil
}

func (s *caseService) RecordPayment(ctx context.Context, userID, caseID string, req RecordPaymentRequest) (*model.Case, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}
	if cs.Status == model.CaseStatusCancelled || cs.Status == model.CaseStatusQuoteDeclined {
		return nil, fmt.Errorf("case is %s; no payment possible", cs.Status)
	}

	price, err := decimal.NewFromString(req.SalePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid sale_price: %w", err)
	}

	tx := cs.Transaction
	if tx == nil {
		tx = &model.Transaction{CaseID: cs.ID}
	}
	now := time.Now()
	tx.SalePrice = &price
	tx.PayoutMethod = req.PayoutMethod
	tx.PaidAt = &now

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.SaveTransaction(txCtx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionRecordPayment, cs.ID.String(), "", map[string]interface{}{
			"sale_price":    price.String(),
			"payout_method": req.PayoutMethod,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) SignDocument(ctx context.Context, userID, caseID string, req SignDocumentRequest) (*model.SignedDocument, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, errors.New("case not found")
	}
	if cs.Status == model.CaseStatusCancelled || cs.Status == model.CaseStatusQuoteDeclined {
		return nil, fmt.Errorf("case is %s; paperwork is closed", cs.Status)
	}

	if err := ValidateSignature(req.Signature, req.PositionX, req.PositionY); err != nil {
		return nil, err
	}

	doc := &model.SignedDocument{
		CaseID:        cs.ID,
		DocumentURL:   req.DocumentURL,
		SignatureData: req.Signature,
		Page:          req.Page,
		PositionX:     req.PositionX,
		PositionY:     req.PositionY,
	}
	if signedBy, err := uuid.Parse(userID); err == nil {
		doc.SignedBy = &signedBy
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.CreateSignedDocument(txCtx, doc); err != nil {
			return fmt.Errorf("failed to store signed document: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionSignDocument, cs.ID.String(), "", map[string]interface{}{
			"document_url": req.DocumentURL,
			"page":         req.Page,
		})
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *caseService) ListSignedDocuments(ctx context.Context, caseID string) ([]model.SignedDocument, error) {
	return s.caseRepo.ListSignedDocuments(ctx, caseID)
}
