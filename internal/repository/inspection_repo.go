package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// InspectionRepository defines data access for Inspection entities
type InspectionRepository interface {
	Create(ctx context.Context, inspection *model.Inspection) error
	GetByID(ctx context.Context, id string) (*model.Inspection, error)
	GetByCaseID(ctx context.Context, caseID string) (*model.Inspection, error)
	GetByToken(ctx context.Context, token string) (*model.Inspection, error)
	ListForInspector(ctx context.Context, inspectorID string, page, limit int) ([]model.Inspection, int64, error)
	Update(ctx context.Context, inspection *model.Inspection) error
}

type inspectionRepository struct {
	db *gorm.DB
}

// NewInspectionRepository returns a new instance of InspectionRepository
func NewInspectionRepository(db *gorm.DB) InspectionRepository {
	return &inspectionRepository{db: db}
}

func (r *inspectionRepository) Create(ctx context.Context, inspection *model.Inspection) error {
	return GetDB(ctx, r.db).Create(inspection).Error
}

func (r *inspectionRepository) GetByID(ctx context.Context, id string) (*model.Inspection, error) {
	var inspection model.Inspection
	if err := GetDB(ctx, r.db).Preload("Inspector").First(&inspection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *inspectionRepository) GetByCaseID(ctx context.Context, caseID string) (*model.Inspection, error) {
	var inspection model.Inspection
	if err := GetDB(ctx, r.db).First(&inspection, "case_id = ?", caseID).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *inspectionRepository) GetByToken(ctx context.Context, token string) (*model.Inspection, error) {
	var inspection model.Inspection
	if err := GetDB(ctx, r.db).First(&inspection, "access_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *inspectionRepository) ListForInspector(ctx context.Context, inspectorID string, page, limit int) ([]model.Inspection, int64, error) {
	var inspections []model.Inspection
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Inspection{}).Where("inspector_id = ?", inspectorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("scheduled_at ASC").Offset(offset).Limit(limit).Find(&inspections).Error; err != nil {
		return nil, 0, err
	}

	return inspections, total, nil
}

func (r *inspectionRepository) Update(ctx context.Context, inspection *model.Inspection) error {
	return GetDB(ctx, r.db).Save(inspection).Error
}
