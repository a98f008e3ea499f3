package model

import (
	"time"

	"github.com/google/uuid"
)

// Inspection status enum constants
const (
	InspectionScheduled  = "scheduled"
	InspectionInProgress = "in-progress"
	InspectionCompleted  = "completed"
)

// Inspection is created when a case reaches the scheduling stage. AccessToken is
// a capability string: anyone holding it may fetch and submit this one inspection
// without a full account, which is how field inspectors work from a shared link.
// Once completed the record is immutable.
type Inspection struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	Status      string    `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	AccessToken string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"access_token"`

	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Location    string    `gorm:"type:text" json:"location"`

	InspectorID *uuid.UUID `gorm:"type:uuid;index" json:"inspector_id"`
	Inspector   *User      `gorm:"foreignKey:InspectorID" json:"inspector,omitempty"`

	// Snapshot of customer/vehicle at scheduling time so the inspector link
	// renders without joining back into the case.
	CustomerName    string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone   string `gorm:"type:varchar(20)" json:"customer_phone"`
	VehicleSummary  string `gorm:"type:varchar(255)" json:"vehicle_summary"`

	// Submitted section data (exterior, interior, mechanical, OBD2 readings...)
	Sections string `gorm:"type:jsonb" json:"sections"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
