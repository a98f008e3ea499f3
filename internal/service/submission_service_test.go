package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/model"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
)

type fakeSubmissionRepo struct {
	submissions map[string]*model.VehicleSubmission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[string]*model.VehicleSubmission)}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, s *model.VehicleSubmission) error {
	s.ID = uuid.New()
	copied := *s
	r.submissions[s.ID.String()] = &copied
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*model.VehicleSubmission, error) {
	s, ok := r.submissions[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSubmissionRepo) GetBySessionID(_ context.Context, sessionID string) (*model.VehicleSubmission, error) {
	for _, s := range r.submissions {
		if s.VerificationSessionID == sessionID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeSubmissionRepo) List(_ context.Context, _, _ int) ([]model.VehicleSubmission, int64, error) {
	out := make([]model.VehicleSubmission, 0, len(r.submissions))
	for _, s := range r.submissions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) Update(_ context.Context, s *model.VehicleSubmission) error {
	copied := *s
	r.submissions[s.ID.String()] = &copied
	return nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	out := make([]model.AuditLog, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func newTestSubmissionService() (SubmissionService, *fakeSubmissionRepo, *fakeAuditRepo) {
	repo := newFakeSubmissionRepo()
	audit := &fakeAuditRepo{}
	svc := NewSubmissionService(repo, audit, fakeTxManager{}, ws.NewHub())
	return svc, repo, audit
}

func TestSubmissionCreateValidation(t *testing.T) {
	svc, _, _ := newTestSubmissionService()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateSubmissionRequest
		wantErr bool
	}{
		{"valid vin", CreateSubmissionRequest{VIN: "1HGCM82633A004352", Year: 2020, Make: "Honda", Model: "Accord"}, false},
		{"valid plate with state", CreateSubmissionRequest{LicensePlate: "ABC123", PlateState: "CA", Year: 2020}, false},
		{"neither vin nor plate", CreateSubmissionRequest{Year: 2020}, true},
		{"short vin", CreateSubmissionRequest{VIN: "1HGCM"}, true},
		{"plate without state", CreateSubmissionRequest{LicensePlate: "ABC123"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmissionOfferGeneratedOnce(t *testing.T) {
	svc, _, audit := newTestSubmissionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSubmissionRequest{VIN: "1HGCM82633A004352", Year: 2021, Make: "Honda", Model: "Accord"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created.ID.String()

	if _, err := svc.UpdateCondition(ctx, id, UpdateConditionRequest{
		Condition:        map[string]interface{}{"drivable": true},
		OverallCondition: "fair",
	}); err != nil {
		t.Fatalf("UpdateCondition: %v", err)
	}

	first, err := svc.UpdateContact(ctx, id, UpdateContactRequest{Email: "seller@example.com"})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if !first.OfferGenerated || first.OfferAmount == nil {
		t.Fatal("expected an offer after the contact step")
	}
	if first.OfferExpiresAt == nil || !first.OfferExpiresAt.After(time.Now()) {
		t.Error("expected a future offer expiry")
	}

	second, err := svc.UpdateContact(ctx, id, UpdateContactRequest{Email: "other@example.com"})
	if err != nil {
		t.Fatalf("second UpdateContact: %v", err)
	}
	if !second.OfferAmount.Equal(*first.OfferAmount) {
		t.Errorf("offer changed on second contact pass: %s vs %s", second.OfferAmount, first.OfferAmount)
	}
	if second.Email != "other@example.com" {
		t.Errorf("email not updated on second pass: %s", second.Email)
	}

	generated := 0
	for _, e := range audit.entries {
		if e.Action == model.ActionGenerateOffer {
			generated++
		}
	}
	if generated != 1 {
		t.Errorf("offer generation audited %d times, want 1", generated)
	}
}

func TestSubmissionMobileRequiresOffer(t *testing.T) {
	svc, _, _ := newTestSubmissionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSubmissionRequest{VIN: "1HGCM82633A004352", Year: 2021})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.UpdateMobile(ctx, created.ID.String(), UpdateMobileRequest{Mobile: "+15555550100"})
	if !errors.Is(err, ErrNoOffer) {
		t.Errorf("UpdateMobile before offer = %v, want ErrNoOffer", err)
	}
}

func TestSubmissionConfirmSale(t *testing.T) {
	svc, repo, _ := newTestSubmissionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSubmissionRequest{VIN: "1HGCM82633A004352", Year: 2021})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created.ID.String()

	// confirming without an offer is refused
	if _, err := svc.ConfirmSale(ctx, id); !errors.Is(err, ErrNoOffer) {
		t.Errorf("ConfirmSale before offer = %v, want ErrNoOffer", err)
	}

	// payout and appointment steps need a confirmed sale
	if _, err := svc.UpdatePayoutMethod(ctx, id, UpdatePayoutMethodRequest{PayoutMethod: model.PayoutACH}); err == nil {
		t.Error("UpdatePayoutMethod before confirmation succeeded, want error")
	}

	if _, err := svc.UpdateContact(ctx, id, UpdateContactRequest{Email: "seller@example.com"}); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	confirmed, err := svc.ConfirmSale(ctx, id)
	if err != nil {
		t.Fatalf("ConfirmSale: %v", err)
	}
	if !confirmed.SaleConfirmed {
		t.Error("SaleConfirmed not set")
	}

	// idempotent on repeat
	if _, err := svc.ConfirmSale(ctx, id); err != nil {
		t.Errorf("repeat ConfirmSale = %v, want nil", err)
	}

	if _, err := svc.UpdatePayoutMethod(ctx, id, UpdatePayoutMethodRequest{PayoutMethod: "wire"}); err == nil {
		t.Error("unsupported payout method accepted, want error")
	}
	if _, err := svc.UpdatePayoutMethod(ctx, id, UpdatePayoutMethodRequest{PayoutMethod: model.PayoutCheck}); err != nil {
		t.Errorf("UpdatePayoutMethod(check) = %v", err)
	}
	if _, err := svc.UpdatePayoutMethod(ctx, id, UpdatePayoutMethodRequest{PayoutMethod: model.PayoutACH}); err != nil {
		t.Errorf("UpdatePayoutMethod after confirmation = %v", err)
	}
	when := time.Now().AddDate(0, 0, 3)
	if _, err := svc.UpdateAppointment(ctx, id, UpdateAppointmentRequest{AppointmentAt: when}); err != nil {
		t.Errorf("UpdateAppointment after confirmation = %v", err)
	}

	stored, _ := repo.GetByID(ctx, id)
	if stored.PayoutMethod != model.PayoutACH {
		t.Errorf("stored payout method = %q", stored.PayoutMethod)
	}
}

func TestSubmissionConfirmSaleExpiredOffer(t *testing.T) {
	svc, repo, _ := newTestSubmissionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSubmissionRequest{VIN: "1HGCM82633A004352", Year: 2021})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created.ID.String()

	if _, err := svc.UpdateContact(ctx, id, UpdateContactRequest{Email: "seller@example.com"}); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}

	stored, _ := repo.GetByID(ctx, id)
	expired := time.Now().AddDate(0, 0, -1)
	stored.OfferExpiresAt = &expired
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.ConfirmSale(ctx, id); err == nil {
		t.Error("ConfirmSale on expired offer succeeded, want error")
	}
}
