package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// DiagnosticCodeRepository defines data access for the OBD2 code catalogue
type DiagnosticCodeRepository interface {
	Create(ctx context.Context, code *model.DiagnosticCode) error
	GetByID(ctx context.Context, id string) (*model.DiagnosticCode, error)
	GetByCode(ctx context.Context, code string) (*model.DiagnosticCode, error)
	List(ctx context.Context, page, limit int, search string) ([]model.DiagnosticCode, int64, error)
	Update(ctx context.Context, code *model.DiagnosticCode) error
	Delete(ctx context.Context, id string) error
}

type diagnosticCodeRepository struct {
	db *gorm.DB
}

// NewDiagnosticCodeRepository returns a new instance of DiagnosticCodeRepository
func NewDiagnosticCodeRepository(db *gorm.DB) DiagnosticCodeRepository {
	return &diagnosticCodeRepository{db: db}
}

func (r *diagnosticCodeRepository) Create(ctx context.Context, code *model.DiagnosticCode) error {
	return GetDB(ctx, r.db).Create(code).Error
}

func (r *diagnosticCodeRepository) GetByID(ctx context.Context, id string) (*model.DiagnosticCode, error) {
	var code model.DiagnosticCode
	if err := GetDB(ctx, r.db).First(&code, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *diagnosticCodeRepository) GetByCode(ctx context.Context, value string) (*model.DiagnosticCode, error) {
	var code model.DiagnosticCode
	if err := GetDB(ctx, r.db).First(&code, "code = ?", value).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *diagnosticCodeRepository) List(ctx context.Context, page, limit int, search string) ([]model.DiagnosticCode, int64, error) {
	var codes []model.DiagnosticCode
	var total int64

	query := GetDB(ctx, r.db).Model(&model.DiagnosticCode{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("code ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("code ASC").Offset(offset).Limit(limit).Find(&codes).Error; err != nil {
		return nil, 0, err
	}

	return codes, total, nil
}

func (r *diagnosticCodeRepository) Update(ctx context.Context, code *model.DiagnosticCode) error {
	return GetDB(ctx, r.db).Save(code).Error
}

func (r *diagnosticCodeRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DiagnosticCode{}).Error
}
