package claims

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediguard/mediguard/internal/domain/ledger"
	"github.com/mediguard/mediguard/internal/platform/auth"
)

// =========== Mocks ===========

type mockClaimRepo struct {
	store map[uuid.UUID]*Claim
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{store: make(map[uuid.UUID]*Claim)}
}

func (m *mockClaimRepo) Create(_ context.Context, c *Claim) error {
	c.ID = uuid.New()
	c.Status = StatusSubmitted
	c.SubmittedAt = time.Now()
	c.UpdatedAt = c.SubmittedAt
	m.store[c.ID] = c
	return nil
}

func (m *mockClaimRepo) GetByID(_ context.Context, id uuid.UUID) (*Claim, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockClaimRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, reviewNotes *string, agentID uuid.UUID) (*Claim, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	c.Status = status
	if reviewNotes != nil {
		c.ReviewNotes = reviewNotes
	}
	c.AgentID = &agentID
	c.UpdatedAt = time.Now()
	return c, nil
}

func (m *mockClaimRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Claim, error) {
	var out []*Claim
	for _, c := range m.store {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClaimRepo) ListAll(_ context.Context) ([]*Claim, error) {
	var out []*Claim
	for _, c := range m.store {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockClaimRepo) CountByStatus(_ context.Context, statuses ...string) (int, error) {
	n := 0
	for _, c := range m.store {
		for _, s := range statuses {
			if c.Status == s {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockClaimRepo) CountAll(_ context.Context) (int, error) {
	return len(m.store), nil
}

type mockAudit struct {
	entries []*ledger.Transaction
	hashes  int
}

func (m *mockAudit) Append(_ context.Context, actorID uuid.UUID, actionType, resourceType, resourceID string, metadata map[string]interface{}) (*ledger.Transaction, error) {
	t := &ledger.Transaction{
		ID:              uuid.New(),
		TransactionHash: uuid.NewString(),
		ActorID:         actorID,
		ActionType:      actionType,
		ResourceType:    resourceType,
		ResourceID:      resourceID,
		Metadata:        metadata,
		Timestamp:       time.Now(),
	}
	m.entries = append(m.entries, t)
	return t, nil
}

func (m *mockAudit) ResourceHash(_ interface{}) (string, error) {
	m.hashes++
	return fmt.Sprintf("hash-%d", m.hashes), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =========== Helpers ===========

func validSubmit() SubmitInput {
	return SubmitInput{
		PolicyNumber:   "POL-1001",
		PolicyProvider: "Acme Mutual",
		ClaimAmount:    250_00,
		ClaimType:      TypeOutpatient,
		Description:    "Consultation and lab work",
	}
}

func newTestService() (*Service, *mockClaimRepo, *mockAudit) {
	repo := newMockClaimRepo()
	audit := &mockAudit{}
	return NewService(repo, audit, passthroughTx{}), repo, audit
}

// =========== Submit Tests ===========

func TestSubmit_Success(t *testing.T) {
	svc, _, audit := newTestService()
	patientID := uuid.New()

	c, err := svc.Submit(context.Background(), patientID, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if c.Status != StatusSubmitted {
		t.Errorf("expected submitted, got %s", c.Status)
	}
	if c.ResourceHash == "" {
		t.Error("expected a resource hash stamp")
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(audit.entries))
	}
	if audit.entries[0].ActionType != ledger.ActionSubmitClaim {
		t.Errorf("expected submit_claim, got %s", audit.entries[0].ActionType)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, audit := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	in := validSubmit()
	in.PolicyNumber = ""
	if _, err := svc.Submit(ctx, patientID, in); err == nil {
		t.Error("expected error for missing policy number")
	}

	in = validSubmit()
	in.ClaimAmount = 0
	if _, err := svc.Submit(ctx, patientID, in); err == nil {
		t.Error("expected error for zero amount")
	}

	in = validSubmit()
	in.ClaimType = "dental"
	if _, err := svc.Submit(ctx, patientID, in); err == nil {
		t.Error("expected error for unknown claim type")
	}

	in = validSubmit()
	in.Description = ""
	if _, err := svc.Submit(ctx, patientID, in); err == nil {
		t.Error("expected error for missing description")
	}

	if len(audit.entries) != 0 {
		t.Error("failed submits must not append ledger entries")
	}
}

// =========== Status Tests ===========

func TestUpdateStatus_Success(t *testing.T) {
	svc, _, audit := newTestService()
	agentID := uuid.New()
	c, err := svc.Submit(context.Background(), uuid.New(), validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	notes := "documents verified"
	updated, err := svc.UpdateStatus(context.Background(), agentID, c.ID, StatusUnderReview, &notes)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != StatusUnderReview {
		t.Errorf("expected under_review, got %s", updated.Status)
	}
	if updated.ReviewNotes == nil || *updated.ReviewNotes != notes {
		t.Error("expected review notes to be stored")
	}
	if updated.AgentID == nil || *updated.AgentID != agentID {
		t.Error("expected reviewing agent to be recorded")
	}

	if len(audit.entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(audit.entries))
	}
	entry := audit.entries[1]
	if entry.ActionType != ledger.ActionUpdateClaimStatus {
		t.Errorf("expected update_claim_status, got %s", entry.ActionType)
	}
	if entry.Metadata["from"] != StatusSubmitted || entry.Metadata["to"] != StatusUnderReview {
		t.Error("expected the transition in entry metadata")
	}
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	agentID := uuid.New()
	c, err := svc.Submit(context.Background(), uuid.New(), validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, status := range []string{StatusUnderReview, StatusApproved, StatusPaid} {
		if _, err := svc.UpdateStatus(context.Background(), agentID, c.ID, status, nil); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	svc, _, audit := newTestService()
	agentID := uuid.New()
	c, err := svc.Submit(context.Background(), uuid.New(), validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	before := len(audit.entries)

	_, err = svc.UpdateStatus(context.Background(), agentID, c.ID, StatusPaid, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(audit.entries) != before {
		t.Error("rejected transition must not append a ledger entry")
	}
}

func TestUpdateStatus_RejectedIsTerminal(t *testing.T) {
	svc, _, _ := newTestService()
	agentID := uuid.New()
	c, err := svc.Submit(context.Background(), uuid.New(), validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), agentID, c.ID, StatusRejected, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), agentID, c.ID, StatusPaid, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after rejection, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), StatusUnderReview, nil)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// =========== Listing / Stats Tests ===========

func TestListFor_RoleScoping(t *testing.T) {
	svc, _, _ := newTestService()
	patientA := uuid.New()
	if _, err := svc.Submit(context.Background(), patientA, validSubmit()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), uuid.New(), validSubmit()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	own, err := svc.ListFor(context.Background(), patientA, auth.RolePatient)
	if err != nil {
		t.Fatalf("ListFor patient: %v", err)
	}
	if len(own) != 1 {
		t.Errorf("patient should see 1 claim, got %d", len(own))
	}

	all, err := svc.ListFor(context.Background(), uuid.New(), auth.RoleInsurance)
	if err != nil {
		t.Fatalf("ListFor insurance: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("insurer should see all claims, got %d", len(all))
	}

	if _, err := svc.ListFor(context.Background(), uuid.New(), auth.RoleDoctor); err == nil {
		t.Error("doctors should not list claims")
	}
}

func TestStatsForInsurer(t *testing.T) {
	svc, _, _ := newTestService()
	agentID := uuid.New()

	approved, _ := svc.Submit(context.Background(), uuid.New(), validSubmit())
	rejected, _ := svc.Submit(context.Background(), uuid.New(), validSubmit())
	if _, err := svc.Submit(context.Background(), uuid.New(), validSubmit()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), agentID, approved.ID, StatusApproved, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), agentID, rejected.ID, StatusRejected, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}

	st, err := svc.StatsForInsurer(context.Background())
	if err != nil {
		t.Fatalf("StatsForInsurer: %v", err)
	}
	if st.Total != 3 || st.Pending != 1 || st.Approved != 1 || st.Rejected != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}
