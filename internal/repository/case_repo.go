package repository

import (
	"backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// CaseFilter narrows List results.
type CaseFilter struct {
	Status  string
	AgentID string
	Page    int
	Limit   int
}

// CaseRepository defines data access for Case aggregates and their children.
type CaseRepository interface {
	Create(ctx context.Context, cs *model.Case) error
	GetByID(ctx context.Context, id string) (*model.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]model.Case, int64, error)
	ListSince(ctx context.Context, since *time.Time) ([]model.Case, error)
	Update(ctx context.Context, cs *model.Case) error

	SaveCustomer(ctx context.Context, customer *model.Customer) error
	SaveVehicle(ctx context.Context, vehicle *model.Vehicle) error
	SaveQuote(ctx context.Context, quote *model.Quote) error
	SaveTransaction(ctx context.Context, tx *model.Transaction) error
	SaveOfferDecision(ctx context.Context, decision *model.OfferDecision) error
	CreateSignedDocument(ctx context.Context, doc *model.SignedDocument) error
	ListSignedDocuments(ctx context.Context, caseID string) ([]model.SignedDocument, error)
}

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository returns a new instance of CaseRepository
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(ctx context.Context, cs *model.Case) error {
	return GetDB(ctx, r.db).Create(cs).Error
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*model.Case, error) {
	var cs model.Case
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Agent").
		Preload("Vehicle").
		Preload("Quote").
		Preload("Transaction").
		Preload("OfferDecision").
		Preload("Inspection").
		First(&cs, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]model.Case, int64, error) {
	var cases []model.Case
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Case{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Customer").
		Preload("Vehicle").
		Preload("Quote").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&cases).Error; err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

// ListSince fetches every case created at or after since (nil means all time)
// with the children the report aggregation reads. The aggregation path is a
// deliberate wholesale fetch, no pagination.
func (r *caseRepository) ListSince(ctx context.Context, since *time.Time) ([]model.Case, error) {
	var cases []model.Case
	query := GetDB(ctx, r.db).
		Preload("Agent").
		Preload("Quote").
		Preload("Transaction")
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, cs *model.Case) error {
	return GetDB(ctx, r.db).Save(cs).Error
}

func (r *caseRepository) SaveCustomer(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *caseRepository) SaveVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Save(vehicle).Error
}

func (r *caseRepository) SaveQuote(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}

func (r *caseRepository) SaveTransaction(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *caseRepository) SaveOfferDecision(ctx context.Context, decision *model.OfferDecision) error {
	return GetDB(ctx, r.db).Save(decision).Error
}

func (r *caseRepository) CreateSignedDocument(ctx context.Context, doc *model.SignedDocument) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *caseRepository) ListSignedDocuments(ctx context.Context, caseID string) ([]model.SignedDocument, error) {
	var docs []model.SignedDocument
	if err := GetDB(ctx, r.db).Where("case_id = ?", caseID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
