package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeCaseRepo struct {
	cases     map[string]*model.Case
	quotes    map[string]*model.Quote
	decisions map[string]*model.OfferDecision
	transacts map[string]*model.Transaction
	documents []model.SignedDocument
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{
		cases:     make(map[string]*model.Case),
		quotes:    make(map[string]*model.Quote),
		decisions: make(map[string]*model.OfferDecision),
		transacts: make(map[string]*model.Transaction),
	}
}

func (r *fakeCaseRepo) Create(_ context.Context, cs *model.Case) error {
	cs.ID = uuid.New()
	cs.CreatedAt = time.Now()
	cs.UpdatedAt = time.Now()
	copied := *cs
	r.cases[cs.ID.String()] = &copied
	return nil
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id string) (*model.Case, error) {
	cs, ok := r.cases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cs
	if q, ok := r.quotes[id]; ok {
		quote := *q
		copied.Quote = &quote
	}
	if d, ok := r.decisions[id]; ok {
		decision := *d
		copied.OfferDecision = &decision
	}
	if t, ok := r.transacts[id]; ok {
		tx := *t
		copied.Transaction = &tx
	}
	return &copied, nil
}

func (r *fakeCaseRepo) List(_ context.Context, _ repository.CaseFilter) ([]model.Case, int64, error) {
	out := make([]model.Case, 0, len(r.cases))
	for _, cs := range r.cases {
		out = append(out, *cs)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCaseRepo) ListSince(_ context.Context, _ *time.Time) ([]model.Case, error) {
	out := make([]model.Case, 0, len(r.cases))
	for _, cs := range r.cases {
		out = append(out, *cs)
	}
	return out, nil
}

func (r *fakeCaseRepo) Update(_ context.Context, cs *model.Case) error {
	cs.UpdatedAt = time.Now()
	copied := *cs
	r.cases[cs.ID.String()] = &copied
	return nil
}

func (r *fakeCaseRepo) SaveCustomer(_ context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	return nil
}

func (r *fakeCaseRepo) SaveVehicle(_ context.Context, _ *model.Vehicle) error { return nil }

func (r *fakeCaseRepo) SaveQuote(_ context.Context, quote *model.Quote) error {
	copied := *quote
	r.quotes[quote.CaseID.String()] = &copied
	return nil
}

func (r *fakeCaseRepo) SaveTransaction(_ context.Context, tx *model.Transaction) error {
	copied := *tx
	r.transacts[tx.CaseID.String()] = &copied
	return nil
}

func (r *fakeCaseRepo) SaveOfferDecision(_ context.Context, decision *model.OfferDecision) error {
	copied := *decision
	r.decisions[decision.CaseID.String()] = &copied
	return nil
}

func (r *fakeCaseRepo) CreateSignedDocument(_ context.Context, doc *model.SignedDocument) error {
	doc.ID = uuid.New()
	r.documents = append(r.documents, *doc)
	return nil
}

func (r *fakeCaseRepo) ListSignedDocuments(_ context.Context, caseID string) ([]model.SignedDocument, error) {
	var out []model.SignedDocument
	for _, d := range r.documents {
		if d.CaseID.String() == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeInspectionRepo struct {
	byCase       map[string]*model.Inspection
	getByCaseErr error
}

func newFakeInspectionRepo() *fakeInspectionRepo {
	return &fakeInspectionRepo{byCase: make(map[string]*model.Inspection)}
}

func (r *fakeInspectionRepo) Create(_ context.Context, inspection *model.Inspection) error {
	inspection.ID = uuid.New()
	copied := *inspection
	r.byCase[inspection.CaseID.String()] = &copied
	return nil
}

func (r *fakeInspectionRepo) GetByID(_ context.Context, id string) (*model.Inspection, error) {
	for _, i := range r.byCase {
		if i.ID.String() == id {
			copied := *i
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInspectionRepo) GetByCaseID(_ context.Context, caseID string) (*model.Inspection, error) {
	if r.getByCaseErr != nil {
		return nil, r.getByCaseErr
	}
	i, ok := r.byCase[caseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *i
	return &copied, nil
}

func (r *fakeInspectionRepo) GetByToken(_ context.Context, token string) (*model.Inspection, error) {
	for _, i := range r.byCase {
		if i.AccessToken == token {
			copied := *i
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInspectionRepo) ListForInspector(_ context.Context, _ string, _, _ int) ([]model.Inspection, int64, error) {
	return nil, 0, nil
}

func (r *fakeInspectionRepo) Update(_ context.Context, inspection *model.Inspection) error {
	copied := *inspection
	r.byCase[inspection.CaseID.String()] = &copied
	return nil
}

func newTestCaseService() (CaseService, *fakeCaseRepo, *fakeInspectionRepo) {
	caseRepo := newFakeCaseRepo()
	inspectionRepo := newFakeInspectionRepo()
	svc := NewCaseService(caseRepo, inspectionRepo, &fakeAuditRepo{}, fakeTxManager{}, ws.NewHub())
	return svc, caseRepo, inspectionRepo
}

func createTestCase(t *testing.T, svc CaseService) *model.Case {
	t.Helper()
	req := CreateCaseRequest{}
	req.Customer.FirstName = "Pat"
	req.Customer.LastName = "Seller"
	req.Vehicle.VIN = "1HGCM82633A004352"
	req.Vehicle.Year = 2019
	req.Vehicle.Make = "Honda"
	req.Vehicle.Model = "Accord"

	cs, err := svc.CreateCase(context.Background(), uuid.NewString(), req)
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	return cs
}

func TestCreateCaseInitialState(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)

	if cs.CurrentStage != model.StageIntake {
		t.Errorf("CurrentStage = %d, want %d", cs.CurrentStage, model.StageIntake)
	}
	if cs.Status != model.CaseStatusNew {
		t.Errorf("Status = %q, want new", cs.Status)
	}
	if cs.StageStatuses.ActiveStage() != model.StageIntake {
		t.Errorf("active stage = %d, want intake", cs.StageStatuses.ActiveStage())
	}
}

func TestAdvanceStageCreatesInspection(t *testing.T) {
	svc, _, inspections := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	advanced, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageScheduling)
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if advanced.CurrentStage != model.StageScheduling {
		t.Errorf("CurrentStage = %d, want %d", advanced.CurrentStage, model.StageScheduling)
	}
	if advanced.Status != model.CaseStatusActive {
		t.Errorf("Status = %q, want active on first advance", advanced.Status)
	}

	inspection, err := inspections.GetByCaseID(ctx, cs.ID.String())
	if err != nil {
		t.Fatal("expected an inspection record at the scheduling stage")
	}
	if inspection.AccessToken == "" {
		t.Error("inspection has no access token")
	}
	if inspection.Status != model.InspectionScheduled {
		t.Errorf("inspection status = %q, want scheduled", inspection.Status)
	}
}

func TestAdvanceStageInspectionLookupErrorAborts(t *testing.T) {
	svc, _, inspections := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()

	// A transient lookup failure must surface, not fall through to creation.
	inspections.getByCaseErr = errors.New("connection reset")
	if _, err := svc.AdvanceStage(ctx, uuid.NewString(), cs.ID.String(), model.StageScheduling); err == nil {
		t.Fatal("advance succeeded despite inspection lookup failure")
	}

	inspections.getByCaseErr = nil
	if _, err := inspections.GetByCaseID(ctx, cs.ID.String()); err == nil {
		t.Error("inspection was created despite the aborted advance")
	}
}

func TestAdvanceStageBackwardPreservesWatermark(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageQuote); err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}

	back, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageIntake)
	if err != nil {
		t.Fatalf("backward AdvanceStage: %v", err)
	}
	if back.CurrentStage != model.StageQuote {
		t.Errorf("CurrentStage = %d after backward target, want watermark %d", back.CurrentStage, model.StageQuote)
	}
}

func TestAdvanceToCompletionFinishesCase(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	done, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageCompletion)
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if done.Status != model.CaseStatusCompleted {
		t.Errorf("Status = %q, want completed", done.Status)
	}
	if done.StageStatuses[model.StageCompletion] != model.StageStatusComplete {
		t.Errorf("completion stage = %q, want complete", done.StageStatuses[model.StageCompletion])
	}

	// terminal: no further advances
	if _, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageCompletion); err == nil {
		t.Error("advance on a completed case succeeded, want error")
	}
}

func TestDecideOfferDecline(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	// no quote yet
	if _, err := svc.DecideOffer(ctx, userID, cs.ID.String(), OfferDecisionRequest{Accepted: false}); err == nil {
		t.Error("decision without a quote succeeded, want error")
	}

	if _, err := svc.SubmitQuote(ctx, userID, cs.ID.String(), SubmitQuoteRequest{OfferAmount: "4200"}); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	declined, err := svc.DecideOffer(ctx, userID, cs.ID.String(), OfferDecisionRequest{Accepted: false, Reason: "too low"})
	if err != nil {
		t.Fatalf("DecideOffer: %v", err)
	}
	if declined.Status != model.CaseStatusQuoteDeclined {
		t.Errorf("Status = %q, want quote-declined", declined.Status)
	}

	// terminal: cancel and advance both refused
	if _, err := svc.CancelCase(ctx, userID, cs.ID.String(), "x"); err == nil {
		t.Error("cancel on a declined case succeeded, want error")
	}
	if _, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageDecision); err == nil {
		t.Error("advance on a declined case succeeded, want error")
	}
}

func TestDecideOfferAcceptAdvancesToPaperwork(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.AdvanceStage(ctx, userID, cs.ID.String(), model.StageDecision); err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if _, err := svc.SubmitQuote(ctx, userID, cs.ID.String(), SubmitQuoteRequest{OfferAmount: "4200"}); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	accepted, err := svc.DecideOffer(ctx, userID, cs.ID.String(), OfferDecisionRequest{Accepted: true})
	if err != nil {
		t.Fatalf("DecideOffer: %v", err)
	}
	if accepted.CurrentStage != model.StagePaperwork {
		t.Errorf("CurrentStage = %d after acceptance, want %d", accepted.CurrentStage, model.StagePaperwork)
	}
	if accepted.OfferDecision == nil || !accepted.OfferDecision.Accepted {
		t.Error("decision record missing or not accepted")
	}
}

func TestSubmitQuoteValidation(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.SubmitQuote(ctx, userID, cs.ID.String(), SubmitQuoteRequest{OfferAmount: "not-a-number"}); err == nil {
		t.Error("non-numeric offer accepted, want error")
	}
	if _, err := svc.SubmitQuote(ctx, userID, cs.ID.String(), SubmitQuoteRequest{OfferAmount: "-10"}); err == nil {
		t.Error("negative offer accepted, want error")
	}

	quoted, err := svc.SubmitQuote(ctx, userID, cs.ID.String(), SubmitQuoteRequest{OfferAmount: "4500.50", FinalPrice: "4400"})
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if quoted.Quote == nil || quoted.Quote.OfferAmount.String() != "4500.5" {
		t.Errorf("quote = %+v, want offer 4500.5", quoted.Quote)
	}
}

func TestSignDocumentValidation(t *testing.T) {
	svc, _, _ := newTestCaseService()
	cs := createTestCase(t, svc)
	ctx := context.Background()
	userID := uuid.NewString()

	req := SignDocumentRequest{
		DocumentURL: "https://docs.example.com/purchase.pdf",
		Signature:   "data:image/png;base64,aGVsbG8=",
		Page:        1,
		PositionX:   0.4,
		PositionY:   0.9,
	}

	doc, err := svc.SignDocument(ctx, userID, cs.ID.String(), req)
	if err != nil {
		t.Fatalf("SignDocument: %v", err)
	}
	if doc.CaseID != cs.ID {
		t.Error("document not linked to case")
	}

	bad := req
	bad.PositionX = 1.4
	if _, err := svc.SignDocument(ctx, userID, cs.ID.String(), bad); err == nil {
		t.Error("out-of-range position accepted, want error")
	}

	docs, err := svc.ListSignedDocuments(ctx, cs.ID.String())
	if err != nil {
		t.Fatalf("ListSignedDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("documents = %d, want 1", len(docs))
	}
}
