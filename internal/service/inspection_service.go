package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type ScheduleInspectionRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	InspectorID string    `json:"inspector_id"`
}

type SubmitInspectionRequest struct {
	Sections string `json:"sections" binding:"required"` // JSON payload of captured sections
}

// --- Interface ---

type InspectionService interface {
	Schedule(ctx context.Context, userID, caseID string, req ScheduleInspectionRequest) (*model.Inspection, error)
	GetByID(ctx context.Context, id string) (*model.Inspection, error)
	GetByToken(ctx context.Context, token string) (*model.Inspection, error)
	ListForInspector(ctx context.Context, inspectorID string, page, limit int) ([]model.Inspection, int64, error)
	Start(ctx context.Context, token string) (*model.Inspection, error)
	SubmitByToken(ctx context.Context, token string, req SubmitInspectionRequest) (*model.Inspection, error)
	SubmitByID(ctx context.Context, userID, id string, req SubmitInspectionRequest) (*model.Inspection, error)
}

type inspectionService struct {
	inspectionRepo repository.InspectionRepository
	caseRepo       repository.CaseRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewInspectionService(
	inspectionRepo repository.InspectionRepository,
	caseRepo repository.CaseRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InspectionService {
	return &inspectionService{
		inspectionRepo: inspectionRepo,
		caseRepo:       caseRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

// --- Implementation ---

// Schedule sets or moves the appointment on a case's inspection. The record
// itself is created when the case reaches the scheduling stage; this fills in
// the when/where and optionally assigns an inspector.
func (s *inspectionService) Schedule(ctx context.Context, userID, caseID string, req ScheduleInspectionRequest) (*model.Inspection, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, errors.New("case not found")
	}

	inspection, err := s.inspectionRepo.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, errors.New("inspection not found; case has not reached scheduling")
	}
	if inspection.Status == model.InspectionCompleted {
		return nil, errors.New("inspection is completed and can no longer be rescheduled")
	}

	inspection.ScheduledAt = req.ScheduledAt
	inspection.Location = req.Location
	if req.InspectorID != "" {
		inspectorID, err := uuid.Parse(req.InspectorID)
		if err != nil {
			return nil, fmt.Errorf("invalid inspector_id: %w", err)
		}
		inspection.InspectorID = &inspectorID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.inspectionRepo.Update(txCtx, inspection); err != nil {
			return fmt.Errorf("failed to schedule inspection: %w", err)
		}
		return s.auditEntry(txCtx, userID, model.ActionScheduleInspection, inspection)
	})
	if err != nil {
		return nil, err
	}

	return inspection, nil
}

func (s *inspectionService) auditEntry(ctx context.Context, userID, action string, inspection *model.Inspection) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   inspection.ID.String(),
		EntityName: inspection.VehicleSummary,
	})
}

func (s *inspectionService) GetByID(ctx context.Context, id string) (*model.Inspection, error) {
	inspection, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("inspection not found")
	}
	return inspection, nil
}

// GetByToken resolves an inspection by its capability token. The token alone
// grants access; there is no account check on this path.
func (s *inspectionService) GetByToken(ctx context.Context, token string) (*model.Inspection, error) {
	inspection, err := s.inspectionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.New("inspection not found")
	}
	return inspection, nil
}

func (s *inspectionService) ListForInspector(ctx context.Context, inspectorID string, page, limit int) ([]model.Inspection, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.inspectionRepo.ListForInspector(ctx, inspectorID, page, limit)
}

func (s *inspectionService) Start(ctx context.Context, token string) (*model.Inspection, error) {
	inspection, err := s.inspectionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.New("inspection not found")
	}
	if inspection.Status == model.InspectionCompleted {
		return nil, errors.New("inspection is already completed")
	}
	if inspection.Status == model.InspectionInProgress {
		return inspection, nil
	}

	now := time.Now()
	inspection.Status = model.InspectionInProgress
	inspection.StartedAt = &now

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.inspectionRepo.Update(txCtx, inspection); err != nil {
			return fmt.Errorf("failed to start inspection: %w", err)
		}
		return s.auditEntry(txCtx, "", model.ActionStartInspection, inspection)
	})
	if err != nil {
		return nil, err
	}

	return inspection, nil
}

// SubmitByToken stores the captured section data and completes the inspection.
// A completed inspection is immutable: further submits are rejected.
func (s *inspectionService) SubmitByToken(ctx context.Context, token string, req SubmitInspectionRequest) (*model.Inspection, error) {
	inspection, err := s.inspectionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.New("inspection not found")
	}
	return s.complete(ctx, "", inspection, req)
}

// SubmitByID is the authenticated variant used by logged-in inspectors.
func (s *inspectionService) SubmitByID(ctx context.Context, userID, id string, req SubmitInspectionRequest) (*model.Inspection, error) {
	inspection, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("inspection not found")
	}
	return s.complete(ctx, userID, inspection, req)
}

func (s *inspectionService) complete(ctx context.Context, userID string, inspection *model.Inspection, req SubmitInspectionRequest) (*model.Inspection, error) {
	if inspection.Status == model.InspectionCompleted {
		return nil, errors.New("inspection is completed and immutable")
	}

	now := time.Now()
	inspection.Sections = req.Sections
	inspection.Status = model.InspectionCompleted
	inspection.CompletedAt = &now
	if inspection.StartedAt == nil {
		inspection.StartedAt = &now
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.inspectionRepo.Update(txCtx, inspection); err != nil {
			return fmt.Errorf("failed to submit inspection: %w", err)
		}
		return s.auditEntry(txCtx, userID, model.ActionSubmitInspection, inspection)
	})
	if err != nil {
		return nil, err
	}

	return inspection, nil
}
