package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// ParseWindow turns the dashboard window selector into a start bound.
// A nil start means all time.
func ParseWindow(window string, now time.Time) (*time.Time, error) {
	switch window {
	case "", "all":
		return nil, nil
	case "7d":
		start := now.AddDate(0, 0, -7)
		return &start, nil
	case "30d":
		start := now.AddDate(0, 0, -30)
		return &start, nil
	case "90d":
		start := now.AddDate(0, 0, -90)
		return &start, nil
	}
	return nil, fmt.Errorf("invalid window %q: expected 7d, 30d, 90d or all", window)
}

// caseRevenue resolves the revenue of a completed case: final price first,
// then the quoted offer, then the recorded sale price. Nil when none is set.
func caseRevenue(cs *model.Case) *decimal.Decimal {
	if cs.Quote != nil {
		if cs.Quote.FinalPrice != nil {
			return cs.Quote.FinalPrice
		}
		if cs.Quote.OfferAmount != nil {
			return cs.Quote.OfferAmount
		}
	}
	if cs.Transaction != nil && cs.Transaction.SalePrice != nil {
		return cs.Transaction.SalePrice
	}
	return nil
}

// Aggregate computes the dashboard summary in a single pass over the case
// list. Empty input yields a zeroed summary rather than dividing by zero.
func Aggregate(cases []model.Case, windowStart *time.Time, now time.Time) model.ReportSummary {
	summary := model.ReportSummary{
		TotalRevenue:   decimal.Zero,
		AvgCaseValue:   decimal.Zero,
		CountsByStatus: make(map[string]int),
		CountsByStage:  make(map[int]int),
		TopAgents:      []model.AgentRanking{},
		WindowStart:    windowStart,
		WindowEnd:      now,
	}

	type agentAgg struct {
		name      string
		completed int
		revenue   decimal.Decimal
	}
	agents := make(map[string]*agentAgg)

	completed := 0
	valuedCases := 0
	var processingDays float64

	for i := range cases {
		cs := &cases[i]
		summary.TotalCases++
		summary.CountsByStatus[cs.Status]++
		summary.CountsByStage[cs.CurrentStage]++
		processingDays += cs.UpdatedAt.Sub(cs.CreatedAt).Hours() / 24

		if cs.Status != model.CaseStatusCompleted {
			continue
		}
		completed++

		revenue := caseRevenue(cs)
		if revenue != nil {
			summary.TotalRevenue = summary.TotalRevenue.Add(*revenue)
			valuedCases++
		}

		if cs.AgentID != nil {
			key := cs.AgentID.String()
			agg, ok := agents[key]
			if !ok {
				agg = &agentAgg{revenue: decimal.Zero}
				if cs.Agent != nil {
					agg.name = cs.Agent.FullName
				}
				agents[key] = agg
			}
			agg.completed++
			if revenue != nil {
				agg.revenue = agg.revenue.Add(*revenue)
			}
		}
	}

	if summary.TotalCases > 0 {
		summary.CompletionRate = float64(completed) / float64(summary.TotalCases) * 100
		summary.AvgProcessingDays = processingDays / float64(summary.TotalCases)
	}
	if valuedCases > 0 {
		summary.AvgCaseValue = summary.TotalRevenue.DivRound(decimal.NewFromInt(int64(valuedCases)), 2)
	}

	for id, agg := range agents {
		summary.TopAgents = append(summary.TopAgents, model.AgentRanking{
			AgentID:        id,
			AgentName:      agg.name,
			CompletedCases: agg.completed,
			TotalRevenue:   agg.revenue,
		})
	}
	sort.Slice(summary.TopAgents, func(i, j int) bool {
		if summary.TopAgents[i].CompletedCases != summary.TopAgents[j].CompletedCases {
			return summary.TopAgents[i].CompletedCases > summary.TopAgents[j].CompletedCases
		}
		return summary.TopAgents[i].TotalRevenue.GreaterThan(summary.TopAgents[j].TotalRevenue)
	})
	if len(summary.TopAgents) > 5 {
		summary.TopAgents = summary.TopAgents[:5]
	}

	return summary
}

// --- Service ---

type ReportService interface {
	GetSummary(ctx context.Context, window string) (model.ReportSummary, error)
}

type reportService struct {
	caseRepo repository.CaseRepository
}

func NewReportService(caseRepo repository.CaseRepository) ReportService {
	return &reportService{caseRepo: caseRepo}
}

func (s *reportService) GetSummary(ctx context.Context, window string) (model.ReportSummary, error) {
	now := time.Now()
	start, err := ParseWindow(window, now)
	if err != nil {
		return model.ReportSummary{}, err
	}

	cases, err := s.caseRepo.ListSince(ctx, start)
	if err != nil {
		return model.ReportSummary{}, err
	}

	return Aggregate(cases, start, now), nil
}
