package service

import (
	"context"
	"errors"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
)

// --- DTOs ---

type CreateDiagnosticCodeRequest struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"required"`
	Severity    string `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	System      string `json:"system" binding:"omitempty,oneof=powertrain chassis body network"`
}

type UpdateDiagnosticCodeRequest struct {
	Description string `json:"description"`
	Severity    string `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	System      string `json:"system" binding:"omitempty,oneof=powertrain chassis body network"`
}

// --- Interface ---

type DiagnosticCodeService interface {
	Create(ctx context.Context, req CreateDiagnosticCodeRequest) (*model.DiagnosticCode, error)
	GetByID(ctx context.Context, id string) (*model.DiagnosticCode, error)
	List(ctx context.Context, page, limit int, search string) ([]model.DiagnosticCode, int64, error)
	Update(ctx context.Context, id string, req UpdateDiagnosticCodeRequest) (*model.DiagnosticCode, error)
	Delete(ctx context.Context, id string) error
}

type diagnosticCodeService struct {
	repo repository.DiagnosticCodeRepository
}

func NewDiagnosticCodeService(repo repository.DiagnosticCodeRepository) DiagnosticCodeService {
	return &diagnosticCodeService{repo: repo}
}

// --- Implementation ---

func (s *diagnosticCodeService) Create(ctx context.Context, req CreateDiagnosticCodeRequest) (*model.DiagnosticCode, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, errors.New("code is required")
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, errors.New("code already exists")
	}

	entry := &model.DiagnosticCode{
		Code:        code,
		Description: req.Description,
		Severity:    req.Severity,
		System:      req.System,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *diagnosticCodeService) GetByID(ctx context.Context, id string) (*model.DiagnosticCode, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("diagnostic code not found")
	}
	return entry, nil
}

func (s *diagnosticCodeService) List(ctx context.Context, page, limit int, search string) ([]model.DiagnosticCode, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit, search)
}

func (s *diagnosticCodeService) Update(ctx context.Context, id string, req UpdateDiagnosticCodeRequest) (*model.DiagnosticCode, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("diagnostic code not found")
	}

	if req.Description != "" {
		entry.Description = req.Description
	}
	if req.Severity != "" {
		entry.Severity = req.Severity
	}
	if req.System != "" {
		entry.System = req.System
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *diagnosticCodeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return errors.New("diagnostic code not found")
	}
	return s.repo.Delete(ctx, id)
}
