package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Case status enum constants
const (
	CaseStatusNew           = "new"
	CaseStatusActive        = "active"
	CaseStatusCompleted     = "completed"
	CaseStatusCancelled     = "cancelled"
	CaseStatusQuoteDeclined = "quote-declined"
)

// TerminalCaseStatus reports whether a case status refuses further stage mutation.
func TerminalCaseStatus(status string) bool {
	return status == CaseStatusCompleted || status == CaseStatusCancelled || status == CaseStatusQuoteDeclined
}

// Case is a single vehicle-acquisition workflow instance tracked through the
// 8-stage wizard. CurrentStage is the server-held high-water mark; cases are
// never deleted, only moved to a terminal status.
type Case struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CurrentStage  int            `gorm:"not null;default:1" json:"current_stage"`
	Status        string         `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	StageStatuses StageStatusMap `gorm:"type:jsonb;not null" json:"stage_statuses"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	AgentID *uuid.UUID `gorm:"type:uuid;index" json:"agent_id"`
	Agent   *User      `gorm:"foreignKey:AgentID" json:"agent,omitempty"`

	Vehicle       *Vehicle       `gorm:"foreignKey:CaseID" json:"vehicle,omitempty"`
	Quote         *Quote         `gorm:"foreignKey:CaseID" json:"quote,omitempty"`
	Transaction   *Transaction   `gorm:"foreignKey:CaseID" json:"transaction,omitempty"`
	OfferDecision *OfferDecision `gorm:"foreignKey:CaseID" json:"offer_decision,omitempty"`
	Inspection    *Inspection    `gorm:"foreignKey:CaseID" json:"inspection,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer holds the intake contact details for a case owner.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	City      string    `gorm:"type:varchar(100)" json:"city"`
	State     string    `gorm:"type:varchar(50)" json:"state"`
	Zip       string    `gorm:"type:varchar(20)" json:"zip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle is the case-attached vehicle record captured during the wizard.
type Vehicle struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	VIN          string    `gorm:"type:varchar(17);index" json:"vin"`
	LicensePlate string    `gorm:"type:varchar(20)" json:"license_plate"`
	Year         int       `json:"year"`
	Make         string    `gorm:"type:varchar(100)" json:"make"`
	Model        string    `gorm:"type:varchar(100)" json:"model"`
	Trim         string    `gorm:"type:varchar(100)" json:"trim"`
	Color        string    `gorm:"type:varchar(50)" json:"color"`
	Mileage      int       `json:"mileage"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Quote carries the estimator's numbers for a case.
type Quote struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	OfferAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"offer_amount"`
	FinalPrice  *decimal.Decimal `gorm:"type:numeric(12,2)" json:"final_price"`
	Notes       string           `gorm:"type:text" json:"notes"`
	QuotedBy    *uuid.UUID       `gorm:"type:uuid" json:"quoted_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Transaction records the payout once a sale goes through.
type Transaction struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	SalePrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"sale_price"`
	PayoutMethod string           `gorm:"type:varchar(20)" json:"payout_method"` // check, ach, instant
	PaidAt       *time.Time       `json:"paid_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// OfferDecision records the customer's accept/decline of a quote.
type OfferDecision struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	Accepted  bool      `gorm:"not null" json:"accepted"`
	Reason    string    `gorm:"type:text" json:"reason"`
	DecidedAt time.Time `gorm:"not null" json:"decided_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SignedDocument is a paperwork artifact: a rendered PDF plus the captured
// signature image and its page-relative position (both axes normalized to 0..1).
type SignedDocument struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"case_id"`
	DocumentURL   string     `gorm:"type:text;not null" json:"document_url"`
	SignatureData string     `gorm:"type:text;not null" json:"-"` // base64 PNG data URL
	Page          int        `gorm:"not null" json:"page"`
	PositionX     float64    `gorm:"not null" json:"position_x"`
	PositionY     float64    `gorm:"not null" json:"position_y"`
	SignedBy      *uuid.UUID `gorm:"type:uuid" json:"signed_by"`
	CreatedAt     time.Time  `json:"created_at"`
}
