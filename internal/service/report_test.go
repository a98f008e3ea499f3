package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		window  string
		want    *time.Time
		wantErr bool
	}{
		{"", nil, false},
		{"all", nil, false},
		{"7d", timePtr(now.AddDate(0, 0, -7)), false},
		{"30d", timePtr(now.AddDate(0, 0, -30)), false},
		{"90d", timePtr(now.AddDate(0, 0, -90)), false},
		{"1d", nil, true},
		{"7D", nil, true},
		{"week", nil, true},
	}

	for _, tt := range tests {
		t.Run("window "+tt.window, func(t *testing.T) {
			got, err := ParseWindow(tt.window, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.window, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseWindow(%q) = %v, want %v", tt.window, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("ParseWindow(%q) = %v, want %v", tt.window, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil, nil, time.Now())

	if summary.TotalCases != 0 {
		t.Errorf("TotalCases = %d, want 0", summary.TotalCases)
	}
	if !summary.TotalRevenue.IsZero() {
		t.Errorf("TotalRevenue = %s, want 0", summary.TotalRevenue)
	}
	if !summary.AvgCaseValue.IsZero() {
		t.Errorf("AvgCaseValue = %s, want 0", summary.AvgCaseValue)
	}
	if summary.CompletionRate != 0 {
		t.Errorf("CompletionRate = %f, want 0", summary.CompletionRate)
	}
	if len(summary.TopAgents) != 0 {
		t.Errorf("TopAgents = %v, want empty", summary.TopAgents)
	}
}

func TestAggregateVolumeAndRevenue(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	cases := []model.Case{
		{
			Status:       model.CaseStatusCompleted,
			CurrentStage: 8,
			Quote:        &model.Quote{FinalPrice: dec("500")},
			CreatedAt:    now.AddDate(0, 0, -4),
			UpdatedAt:    now.AddDate(0, 0, -2),
		},
		{
			Status:       model.CaseStatusActive,
			CurrentStage: 3,
			Quote:        &model.Quote{OfferAmount: dec("9999")},
			CreatedAt:    now.AddDate(0, 0, -2),
			UpdatedAt:    now,
		},
	}

	summary := Aggregate(cases, nil, now)

	if summary.TotalCases != 2 {
		t.Errorf("TotalCases = %d, want 2", summary.TotalCases)
	}
	// only the completed case contributes revenue
	if summary.TotalRevenue.String() != "500" {
		t.Errorf("TotalRevenue = %s, want 500", summary.TotalRevenue)
	}
	if summary.CompletionRate != 50 {
		t.Errorf("CompletionRate = %f, want 50", summary.CompletionRate)
	}
	if summary.CountsByStatus[model.CaseStatusCompleted] != 1 || summary.CountsByStatus[model.CaseStatusActive] != 1 {
		t.Errorf("CountsByStatus = %v", summary.CountsByStatus)
	}
	if summary.CountsByStage[8] != 1 || summary.CountsByStage[3] != 1 {
		t.Errorf("CountsByStage = %v", summary.CountsByStage)
	}
	if summary.AvgProcessingDays != 2 {
		t.Errorf("AvgProcessingDays = %f, want 2", summary.AvgProcessingDays)
	}
}

func TestAggregateRevenuePrecedence(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		c    model.Case
		want string
	}{
		{
			"final price wins over offer and sale",
			model.Case{
				Status:      model.CaseStatusCompleted,
				Quote:       &model.Quote{OfferAmount: dec("100"), FinalPrice: dec("120")},
				Transaction: &model.Transaction{SalePrice: dec("90")},
			},
			"120",
		},
		{
			"offer amount when no final price",
			model.Case{
				Status:      model.CaseStatusCompleted,
				Quote:       &model.Quote{OfferAmount: dec("100")},
				Transaction: &model.Transaction{SalePrice: dec("90")},
			},
			"100",
		},
		{
			"sale price when no quote",
			model.Case{
				Status:      model.CaseStatusCompleted,
				Transaction: &model.Transaction{SalePrice: dec("90")},
			},
			"90",
		},
		{
			"nothing priced",
			model.Case{Status: model.CaseStatusCompleted},
			"0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Aggregate([]model.Case{tt.c}, nil, now)
			if summary.TotalRevenue.String() != tt.want {
				t.Errorf("TotalRevenue = %s, want %s", summary.TotalRevenue, tt.want)
			}
		})
	}
}

func TestAggregateTopAgents(t *testing.T) {
	now := time.Now()
	busy := uuid.New()
	slow := uuid.New()

	cases := []model.Case{
		{Status: model.CaseStatusCompleted, AgentID: &busy, Agent: &model.User{FullName: "Busy Agent"}, Quote: &model.Quote{FinalPrice: dec("300")}},
		{Status: model.CaseStatusCompleted, AgentID: &busy, Agent: &model.User{FullName: "Busy Agent"}, Quote: &model.Quote{FinalPrice: dec("200")}},
		{Status: model.CaseStatusCompleted, AgentID: &slow, Agent: &model.User{FullName: "Slow Agent"}, Quote: &model.Quote{FinalPrice: dec("900")}},
		{Status: model.CaseStatusActive, AgentID: &slow, Agent: &model.User{FullName: "Slow Agent"}},
	}

	summary := Aggregate(cases, nil, now)

	if len(summary.TopAgents) != 2 {
		t.Fatalf("TopAgents length = %d, want 2", len(summary.TopAgents))
	}
	// ranked by completed cases first, revenue second
	if summary.TopAgents[0].AgentID != busy.String() {
		t.Errorf("top agent = %s, want %s", summary.TopAgents[0].AgentID, busy)
	}
	if summary.TopAgents[0].CompletedCases != 2 {
		t.Errorf("top agent completed = %d, want 2", summary.TopAgents[0].CompletedCases)
	}
	if summary.TopAgents[0].TotalRevenue.String() != "500" {
		t.Errorf("top agent revenue = %s, want 500", summary.TopAgents[0].TotalRevenue)
	}
	if summary.TopAgents[1].AgentID != slow.String() {
		t.Errorf("second agent = %s, want %s", summary.TopAgents[1].AgentID, slow)
	}

	// average over the cases that actually carried a value
	if summary.AvgCaseValue.String() != "466.67" {
		t.Errorf("AvgCaseValue = %s, want 466.67", summary.AvgCaseValue)
	}
}
