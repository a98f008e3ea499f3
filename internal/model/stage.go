package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Case workflow stages. Stage 0 is the read-only summary view; stages 1-8 carry forms.
const (
	StageSummary    = 0
	StageIntake     = 1
	StageScheduling = 2
	StageInspection = 3
	StageQuote      = 4
	StageDecision   = 5
	StagePaperwork  = 6
	StagePayment    = 7
	StageCompletion = 8

	MaxStage = StageCompletion
)

// Per-stage status values
const (
	StageStatusPending  = "pending"
	StageStatusActive   = "active"
	StageStatusComplete = "complete"
)

// StageName returns a human readable label for a stage number.
func StageName(stage int) string {
	switch stage {
	case StageSummary:
		return "Summary"
	case StageIntake:
		return "Customer Intake"
	case StageScheduling:
		return "Inspection Scheduling"
	case StageInspection:
		return "Inspection"
	case StageQuote:
		return "Quote"
	case StageDecision:
		return "Offer Decision"
	case StagePaperwork:
		return "Paperwork"
	case StagePayment:
		return "Payment"
	case StageCompletion:
		return "Completion"
	}
	return "Unknown"
}

// StageStatusMap maps stage number -> pending/active/complete, stored as jsonb.
type StageStatusMap map[int]string

// NewStageStatusMap returns the initial map for a freshly created case:
// intake active, everything after it pending.
func NewStageStatusMap() StageStatusMap {
	m := make(StageStatusMap, MaxStage)
	for stage := StageIntake; stage <= MaxStage; stage++ {
		m[stage] = StageStatusPending
	}
	m[StageIntake] = StageStatusActive
	return m
}

// Value implements driver.Valuer so GORM persists the map as jsonb.
func (m StageStatusMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading jsonb back into the map.
func (m *StageStatusMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StageStatusMap: %T", value)
	}
	return json.Unmarshal(data, m)
}

// ActiveStage returns the stage currently marked active, or -1 if none.
func (m StageStatusMap) ActiveStage() int {
	for stage, status := range m {
		if status == StageStatusActive {
			return stage
		}
	}
	return -1
}
