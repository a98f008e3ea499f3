package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func newTestInspectionService() (InspectionService, *fakeCaseRepo, *fakeInspectionRepo) {
	caseRepo := newFakeCaseRepo()
	inspectionRepo := newFakeInspectionRepo()
	svc := NewInspectionService(inspectionRepo, caseRepo, &fakeAuditRepo{}, fakeTxManager{})
	return svc, caseRepo, inspectionRepo
}

func seedInspection(t *testing.T, caseRepo *fakeCaseRepo, inspectionRepo *fakeInspectionRepo, token string) *model.Inspection {
	t.Helper()
	cs := &model.Case{
		CurrentStage:  model.StageScheduling,
		Status:        model.CaseStatusActive,
		StageStatuses: model.NewStageStatusMap(),
	}
	if err := caseRepo.Create(context.Background(), cs); err != nil {
		t.Fatalf("seed case: %v", err)
	}

	inspection := &model.Inspection{
		CaseID:      cs.ID,
		Status:      model.InspectionScheduled,
		AccessToken: token,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	}
	if err := inspectionRepo.Create(context.Background(), inspection); err != nil {
		t.Fatalf("seed inspection: %v", err)
	}
	return inspection
}

func TestStartInspection(t *testing.T) {
	svc, caseRepo, inspectionRepo := newTestInspectionService()
	seedInspection(t, caseRepo, inspectionRepo, "tok-1")
	ctx := context.Background()

	started, err := svc.Start(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != model.InspectionInProgress {
		t.Errorf("status = %q, want in-progress", started.Status)
	}
	if started.StartedAt == nil {
		t.Fatal("StartedAt not stamped")
	}

	// repeat start is a no-op, not an error
	again, err := svc.Start(ctx, "tok-1")
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if again.Status != model.InspectionInProgress {
		t.Errorf("status after repeat = %q, want in-progress", again.Status)
	}
	if !again.StartedAt.Equal(*started.StartedAt) {
		t.Errorf("StartedAt moved on repeat: %v vs %v", again.StartedAt, started.StartedAt)
	}

	if _, err := svc.Start(ctx, "no-such-token"); err == nil {
		t.Error("Start with unknown token succeeded, want error")
	}
}

func TestSubmitInspectionLocksRecord(t *testing.T) {
	svc, caseRepo, inspectionRepo := newTestInspectionService()
	seeded := seedInspection(t, caseRepo, inspectionRepo, "tok-1")
	ctx := context.Background()

	done, err := svc.SubmitByToken(ctx, "tok-1", SubmitInspectionRequest{Sections: `{"exterior":"ok"}`})
	if err != nil {
		t.Fatalf("SubmitByToken: %v", err)
	}
	if done.Status != model.InspectionCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	if done.CompletedAt == nil || done.StartedAt == nil {
		t.Error("completion timestamps not stamped")
	}
	if done.Sections != `{"exterior":"ok"}` {
		t.Errorf("sections = %q", done.Sections)
	}

	// completed inspections are immutable on every entry point
	if _, err := svc.SubmitByToken(ctx, "tok-1", SubmitInspectionRequest{Sections: `{"exterior":"redo"}`}); err == nil {
		t.Error("second token submit succeeded, want error")
	}
	if _, err := svc.SubmitByID(ctx, uuid.NewString(), seeded.ID.String(), SubmitInspectionRequest{Sections: `{}`}); err == nil {
		t.Error("submit by id on completed inspection succeeded, want error")
	}
	if _, err := svc.Start(ctx, "tok-1"); err == nil {
		t.Error("start on completed inspection succeeded, want error")
	}

	stored, err := inspectionRepo.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.Sections != `{"exterior":"ok"}` {
		t.Errorf("stored sections changed to %q after rejected resubmits", stored.Sections)
	}
}

func TestScheduleInspection(t *testing.T) {
	svc, caseRepo, inspectionRepo := newTestInspectionService()
	seeded := seedInspection(t, caseRepo, inspectionRepo, "tok-1")
	ctx := context.Background()
	userID := uuid.NewString()

	when := time.Now().AddDate(0, 0, 2)
	inspectorID := uuid.NewString()
	scheduled, err := svc.Schedule(ctx, userID, seeded.CaseID.String(), ScheduleInspectionRequest{
		ScheduledAt: when,
		Location:    "12 Harbor Rd",
		InspectorID: inspectorID,
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if scheduled.Location != "12 Harbor Rd" || !scheduled.ScheduledAt.Equal(when) {
		t.Errorf("scheduled = %+v", scheduled)
	}
	if scheduled.InspectorID == nil || scheduled.InspectorID.String() != inspectorID {
		t.Error("inspector not assigned")
	}

	if _, err := svc.Schedule(ctx, userID, seeded.CaseID.String(), ScheduleInspectionRequest{
		ScheduledAt: when,
		Location:    "12 Harbor Rd",
		InspectorID: "not-a-uuid",
	}); err == nil {
		t.Error("bad inspector id accepted, want error")
	}

	if _, err := svc.SubmitByToken(ctx, "tok-1", SubmitInspectionRequest{Sections: `{}`}); err != nil {
		t.Fatalf("SubmitByToken: %v", err)
	}
	if _, err := svc.Schedule(ctx, userID, seeded.CaseID.String(), ScheduleInspectionRequest{
		ScheduledAt: when,
		Location:    "elsewhere",
	}); err == nil {
		t.Error("reschedule of a completed inspection succeeded, want error")
	}
}
