package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Verification status values mirrored from the identity provider
const (
	VerificationPending   = "pending"
	VerificationApproved  = "approved"
	VerificationDeclined  = "declined"
	VerificationExpired   = "expired"
	VerificationAbandoned = "abandoned"
)

// TerminalVerificationStatus reports whether the provider will never change status again.
func TerminalVerificationStatus(status string) bool {
	switch status {
	case VerificationApproved, VerificationDeclined, VerificationExpired, VerificationAbandoned:
		return true
	}
	return false
}

// Payout method values for the funnel
const (
	PayoutCheck   = "check"
	PayoutACH     = "ach"
	PayoutInstant = "instant"
)

// ValidPayoutMethod reports whether method is one of the supported payout options.
func ValidPayoutMethod(method string) bool {
	switch method {
	case PayoutCheck, PayoutACH, PayoutInstant:
		return true
	}
	return false
}

// VehicleSubmission is one consumer record in the self-serve instant-offer
// funnel. It is created on VIN/plate entry and mutated one field group at a
// time as the consumer walks the funnel pages; the record id travels in the
// page URL so there is no client-held state between steps.
type VehicleSubmission struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	// VIN/plate entry
	VIN          string `gorm:"type:varchar(17);index" json:"vin"`
	LicensePlate string `gorm:"type:varchar(20)" json:"license_plate"`
	PlateState   string `gorm:"type:varchar(10)" json:"plate_state"`
	Year         int    `json:"year"`
	Make         string `gorm:"type:varchar(100)" json:"make"`
	Model        string `gorm:"type:varchar(100)" json:"model"`
	Trim         string `gorm:"type:varchar(100)" json:"trim"`

	// Step payloads, free-form per the funnel forms
	Basics    string `gorm:"type:jsonb" json:"basics"`
	Condition string `gorm:"type:jsonb" json:"condition"`

	// Contact capture
	Email  string `gorm:"type:varchar(255);index" json:"email"`
	Mobile string `gorm:"type:varchar(20)" json:"mobile"`

	// Instant offer
	OfferAmount    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"offer_amount"`
	OfferExpiresAt *time.Time       `json:"offer_expires_at"`
	OfferGenerated bool             `gorm:"default:false" json:"offer_generated"`

	// Ownership / identity verification
	VerificationSessionID string `gorm:"type:varchar(255);index" json:"verification_session_id"`
	VerificationURL       string `gorm:"type:varchar(512)" json:"verification_url"`
	VerificationStatus    string `gorm:"type:varchar(20)" json:"verification_status"`
	OwnershipVerified     bool   `gorm:"default:false" json:"ownership_verified"`

	// Payout and pickup
	PayoutMethod  string     `gorm:"type:varchar(20)" json:"payout_method"`
	AppointmentAt *time.Time `json:"appointment_at"`
	SaleConfirmed bool       `gorm:"default:false" json:"sale_confirmed"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
