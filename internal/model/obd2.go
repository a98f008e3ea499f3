package model

import (
	"time"

	"github.com/google/uuid"
)

// DiagnosticCode is one entry in the OBD2 fault-code catalogue used by the
// inspection capture tooling.
type DiagnosticCode struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"` // e.g. P0301
	Description string    `gorm:"type:text;not null" json:"description"`
	Severity    string    `gorm:"type:varchar(20)" json:"severity"` // low, medium, high, critical
	System      string    `gorm:"type:varchar(50);index" json:"system"` // powertrain, chassis, body, network
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
