package service

import (
	"fmt"

	"backend/internal/model"
)

// StagesForRole returns the wizard stages a role may open, excluding the
// always-visible summary (stage 0). Back-office roles work stages 1-7; the
// completion stage is terminal and entered only by advancing. Inspectors see
// exactly the inspection stage. Customers act through the self-serve funnel
// and get no wizard forms.
func StagesForRole(role string) []int {
	switch role {
	case model.RoleAdmin, model.RoleAgent, model.RoleEstimator:
		stages := make([]int, 0, 7)
		for stage := model.StageIntake; stage <= model.StagePayment; stage++ {
			stages = append(stages, stage)
		}
		return stages
	case model.RoleInspector:
		return []int{model.StageInspection}
	}
	return []int{}
}

// IsStageAccessible reports whether a role may open stage n on a case whose
// high-water mark is maxStage. The summary is open to everyone; any other
// stage must be both in the role's set and already reached.
func IsStageAccessible(role string, n, maxStage int) bool {
	if n == model.StageSummary {
		return true
	}
	if n > maxStage {
		return false
	}
	for _, stage := range StagesForRole(role) {
		if stage == n {
			return true
		}
	}
	return false
}

// HighestAccessibleStage returns the stage a role should be redirected to on a
// case: the largest accessible stage, falling back to the summary.
func HighestAccessibleStage(role string, maxStage int) int {
	best := model.StageSummary
	for _, stage := range StagesForRole(role) {
		if stage <= maxStage && stage > best {
			best = stage
		}
	}
	return best
}

// StageTransition captures the effect of one forward advance: only the stage
// being left and the stage being entered change status.
type StageTransition struct {
	FromStage int
	ToStage   int
	Statuses  model.StageStatusMap
	Completed bool // the advance reached the completion stage
}

// ComputeAdvance validates and computes an advance from current to target.
// A target at or below the current stage is backward navigation: it is a view
// concern and deliberately yields no transition, preserving the server-held
// watermark. Forward advances mark the previous stage complete and the target
// active, touching nothing else; advancing into the completion stage also
// closes it out.
func ComputeAdvance(statuses model.StageStatusMap, current, target int) (*StageTransition, error) {
	if target < model.StageSummary || target > model.MaxStage {
		return nil, fmt.Errorf("stage %d out of range", target)
	}
	if target <= current {
		return nil, nil
	}

	next := make(model.StageStatusMap, len(statuses))
	for stage, status := range statuses {
		next[stage] = status
	}
	next[current] = model.StageStatusComplete

	completed := target == model.StageCompletion
	if completed {
		next[target] = model.StageStatusComplete
	} else {
		next[target] = model.StageStatusActive
	}

	return &StageTransition{
		FromStage: current,
		ToStage:   target,
		Statuses:  next,
		Completed: completed,
	}, nil
}
