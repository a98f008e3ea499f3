package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportSummary aggregates case metrics over a selected time window
type ReportSummary struct {
	TotalCases        int             `json:"total_cases"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AvgCaseValue      decimal.Decimal `json:"avg_case_value"`
	CompletionRate    float64         `json:"completion_rate"` // percent
	AvgProcessingDays float64         `json:"avg_processing_days"`
	CountsByStatus    map[string]int  `json:"counts_by_status"`
	CountsByStage     map[int]int     `json:"counts_by_stage"`
	TopAgents         []AgentRanking  `json:"top_agents"`
	WindowStart       *time.Time      `json:"window_start"` // nil means all time
	WindowEnd         time.Time       `json:"window_end"`
}

// AgentRanking represents an agent ranked by completed cases within the window
type AgentRanking struct {
	AgentID        string          `json:"agent_id"`
	AgentName      string          `json:"agent_name"`
	CompletedCases int             `json:"completed_cases"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}
