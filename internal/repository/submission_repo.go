package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// SubmissionRepository defines data access for self-serve vehicle submissions
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.VehicleSubmission) error
	GetByID(ctx context.Context, id string) (*model.VehicleSubmission, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.VehicleSubmission, error)
	List(ctx context.Context, page, limit int) ([]model.VehicleSubmission, int64, error)
	Update(ctx context.Context, submission *model.VehicleSubmission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository returns a new instance of SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.VehicleSubmission) error {
	return GetDB(ctx, r.db).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*model.VehicleSubmission, error) {
	var submission model.VehicleSubmission
	if err := GetDB(ctx, r.db).First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.VehicleSubmission, error) {
	var submission model.VehicleSubmission
	if err := GetDB(ctx, r.db).First(&submission, "verification_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, page, limit int) ([]model.VehicleSubmission, int64, error) {
	var submissions []model.VehicleSubmission
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.VehicleSubmission{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Order("created_at DESC").Offset(offset).Limit(limit).Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *model.VehicleSubmission) error {
	return GetDB(ctx, r.db).Save(submission).Error
}
