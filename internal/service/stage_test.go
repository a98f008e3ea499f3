package service

import (
	"reflect"
	"testing"

	"backend/internal/model"
)

func TestStagesForRole(t *testing.T) {
	tests := []struct {
		role string
		want []int
	}{
		{model.RoleAdmin, []int{1, 2, 3, 4, 5, 6, 7}},
		{model.RoleAgent, []int{1, 2, 3, 4, 5, 6, 7}},
		{model.RoleEstimator, []int{1, 2, 3, 4, 5, 6, 7}},
		{model.RoleInspector, []int{3}},
		{model.RoleCustomer, []int{}},
		{"", []int{}},
		{"nonsense", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := StagesForRole(tt.role)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StagesForRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestIsStageAccessible(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		stage    int
		maxStage int
		want     bool
	}{
		{"summary always open to customer", model.RoleCustomer, 0, 1, true},
		{"summary always open to inspector", model.RoleInspector, 0, 1, true},
		{"agent within watermark", model.RoleAgent, 3, 4, true},
		{"agent beyond watermark", model.RoleAgent, 5, 4, false},
		{"agent at watermark", model.RoleAgent, 4, 4, true},
		{"inspector at inspection stage", model.RoleInspector, 3, 3, true},
		{"inspector at quote stage", model.RoleInspector, 4, 7, false},
		{"inspector before case reaches inspection", model.RoleInspector, 3, 2, false},
		{"customer gets no wizard form", model.RoleCustomer, 1, 8, false},
		{"completion stage not in any role set", model.RoleAdmin, 8, 8, false},
		{"admin anywhere within watermark", model.RoleAdmin, 7, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsStageAccessible(tt.role, tt.stage, tt.maxStage)
			if got != tt.want {
				t.Errorf("IsStageAccessible(%q, %d, %d) = %v, want %v", tt.role, tt.stage, tt.maxStage, got, tt.want)
			}
		})
	}
}

func TestHighestAccessibleStage(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		maxStage int
		want     int
	}{
		{"agent mid-pipeline", model.RoleAgent, 4, 4},
		{"agent at completion falls back to payment", model.RoleAgent, 8, 7},
		{"inspector reached", model.RoleInspector, 5, 3},
		{"inspector not yet reached", model.RoleInspector, 2, 0},
		{"customer falls back to summary", model.RoleCustomer, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HighestAccessibleStage(tt.role, tt.maxStage)
			if got != tt.want {
				t.Errorf("HighestAccessibleStage(%q, %d) = %d, want %d", tt.role, tt.maxStage, got, tt.want)
			}
		})
	}
}

func TestComputeAdvanceForward(t *testing.T) {
	statuses := model.NewStageStatusMap()

	tr, err := ComputeAdvance(statuses, 1, 2)
	if err != nil {
		t.Fatalf("ComputeAdvance returned error: %v", err)
	}
	if tr == nil {
		t.Fatal("expected a transition for a forward advance")
	}
	if tr.FromStage != 1 || tr.ToStage != 2 || tr.Completed {
		t.Errorf("transition = %+v, want from 1 to 2, not completed", tr)
	}
	if tr.Statuses[1] != model.StageStatusComplete {
		t.Errorf("stage 1 status = %q, want complete", tr.Statuses[1])
	}
	if tr.Statuses[2] != model.StageStatusActive {
		t.Errorf("stage 2 status = %q, want active", tr.Statuses[2])
	}
	for stage := 3; stage <= model.MaxStage; stage++ {
		if tr.Statuses[stage] != model.StageStatusPending {
			t.Errorf("stage %d status = %q, want pending untouched", stage, tr.Statuses[stage])
		}
	}

	// the input map must not be mutated
	if statuses[1] != model.StageStatusActive {
		t.Errorf("input map mutated: stage 1 = %q", statuses[1])
	}
}

func TestComputeAdvanceBackwardIsNoop(t *testing.T) {
	statuses := model.NewStageStatusMap()
	statuses[1] = model.StageStatusComplete
	statuses[2] = model.StageStatusComplete
	statuses[3] = model.StageStatusActive

	for _, target := range []int{0, 1, 2, 3} {
		tr, err := ComputeAdvance(statuses, 3, target)
		if err != nil {
			t.Errorf("ComputeAdvance(_, 3, %d) returned error: %v", target, err)
		}
		if tr != nil {
			t.Errorf("ComputeAdvance(_, 3, %d) = %+v, want nil transition", target, tr)
		}
	}
}

func TestComputeAdvanceOutOfRange(t *testing.T) {
	statuses := model.NewStageStatusMap()

	for _, target := range []int{-1, 9, 100} {
		if _, err := ComputeAdvance(statuses, 1, target); err == nil {
			t.Errorf("ComputeAdvance(_, 1, %d) expected error", target)
		}
	}
}

func TestComputeAdvanceIntoCompletion(t *testing.T) {
	statuses := model.NewStageStatusMap()
	for stage := 1; stage <= 6; stage++ {
		statuses[stage] = model.StageStatusComplete
	}
	statuses[7] = model.StageStatusActive

	tr, err := ComputeAdvance(statuses, 7, 8)
	if err != nil {
		t.Fatalf("ComputeAdvance returned error: %v", err)
	}
	if !tr.Completed {
		t.Error("expected Completed for an advance into the completion stage")
	}
	if tr.Statuses[8] != model.StageStatusComplete {
		t.Errorf("completion stage status = %q, want complete", tr.Statuses[8])
	}
	if tr.Statuses[7] != model.StageStatusComplete {
		t.Errorf("stage 7 status = %q, want complete", tr.Statuses[7])
	}
	if tr.Statuses.ActiveStage() != -1 {
		t.Errorf("ActiveStage() = %d, want -1 on a completed case", tr.Statuses.ActiveStage())
	}
}
