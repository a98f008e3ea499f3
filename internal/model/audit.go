package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateCase     = "CREATE_CASE"
	ActionAdvanceStage   = "ADVANCE_STAGE"
	ActionCancelCase     = "CANCEL_CASE"
	ActionSubmitQuote    = "SUBMIT_QUOTE"
	ActionOfferDecision  = "OFFER_DECISION"
	ActionSignDocument   = "SIGN_DOCUMENT"
	ActionRecordPayment  = "RECORD_PAYMENT"

	ActionScheduleInspection = "SCHEDULE_INSPECTION"
	ActionStartInspection    = "START_INSPECTION"
	ActionSubmitInspection   = "SUBMIT_INSPECTION"

	ActionCreateSubmission = "CREATE_SUBMISSION"
	ActionGenerateOffer    = "GENERATE_OFFER"
	ActionConfirmSale      = "CONFIRM_SALE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for unauthenticated funnel actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
