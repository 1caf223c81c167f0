package insights

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// =========== Mock Repository ===========

type mockInsightRepo struct {
	store map[uuid.UUID]*Insight
}

func newMockInsightRepo() *mockInsightRepo {
	return &mockInsightRepo{store: make(map[uuid.UUID]*Insight)}
}

func (m *mockInsightRepo) Create(_ context.Context, i *Insight) error {
	i.ID = uuid.New()
	i.CreatedAt = time.Now()
	m.store[i.ID] = i
	return nil
}

func (m *mockInsightRepo) GetByID(_ context.Context, id uuid.UUID) (*Insight, error) {
	i, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return i, nil
}

func (m *mockInsightRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Insight, error) {
	var out []*Insight
	for _, i := range m.store {
		if i.PatientID == patientID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *mockInsightRepo) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	items, _ := m.ListByPatient(ctx, patientID)
	return len(items), nil
}

func (m *mockInsightRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	i, ok := m.store[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	i.IsRead = true
	return nil
}

// =========== Analyzer Tests ===========

func TestAnalyze_HighBloodPressure(t *testing.T) {
	findings := analyze("Routine checkup. BP: 150/95, otherwise stable.")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.InsightType != TypeAlert || f.Severity != SeverityHigh {
		t.Errorf("expected high alert, got %s/%s", f.InsightType, f.Severity)
	}
	if !strings.Contains(f.Description, "150/95") {
		t.Errorf("expected reading in description, got %q", f.Description)
	}
}

func TestAnalyze_BloodPressureBoundaries(t *testing.T) {
	tests := []struct {
		text     string
		count    int
		severity string
	}{
		{"BP: 140/85", 1, SeverityHigh},   // systolic at hypertension threshold
		{"BP: 130/90", 1, SeverityHigh},   // diastolic at hypertension threshold
		{"BP: 125/75", 1, SeverityMedium}, // elevated systolic
		{"BP: 118/82", 1, SeverityMedium}, // elevated diastolic
		{"BP: 115/75", 0, ""},             // normal
	}
	for _, tt := range tests {
		findings := analyze(tt.text)
		if len(findings) != tt.count {
			t.Errorf("%q: expected %d findings, got %d", tt.text, tt.count, len(findings))
			continue
		}
		if tt.count > 0 && findings[0].Severity != tt.severity {
			t.Errorf("%q: expected severity %s, got %s", tt.text, tt.severity, findings[0].Severity)
		}
	}
}

func TestAnalyze_BloodPressurePhrasing(t *testing.T) {
	if len(analyze("blood pressure: 145/92 at rest")) != 1 {
		t.Error("expected the long form to match")
	}
	if len(analyze("bp 150/100")) != 1 {
		t.Error("expected the no-colon form to match")
	}
}

func TestAnalyze_Glucose(t *testing.T) {
	tests := []struct {
		text     string
		count    int
		itype    string
		severity string
	}{
		{"Fasting glucose: 200 mg/dL", 1, TypeAlert, SeverityHigh},
		{"glucose: 160", 1, TypeRecommendation, SeverityMedium},
		{"blood sugar: 65 before breakfast", 1, TypeAlert, SeverityMedium},
		{"glucose: 100", 0, "", ""},
	}
	for _, tt := range tests {
		findings := analyze(tt.text)
		if len(findings) != tt.count {
			t.Errorf("%q: expected %d findings, got %d", tt.text, tt.count, len(findings))
			continue
		}
		if tt.count > 0 {
			if findings[0].InsightType != tt.itype || findings[0].Severity != tt.severity {
				t.Errorf("%q: expected %s/%s, got %s/%s", tt.text,
					tt.itype, tt.severity, findings[0].InsightType, findings[0].Severity)
			}
		}
	}
}

func TestAnalyze_Cholesterol(t *testing.T) {
	if f := analyze("Total cholesterol: 250"); len(f) != 1 || f[0].Severity != SeverityHigh {
		t.Errorf("expected high alert for 250, got %+v", f)
	}
	if f := analyze("cholesterol: 210"); len(f) != 1 || f[0].Severity != SeverityMedium {
		t.Errorf("expected medium for 210, got %+v", f)
	}
	if f := analyze("cholesterol: 180"); len(f) != 0 {
		t.Errorf("expected no findings for 180, got %+v", f)
	}
}

func TestAnalyze_MultipleReadings(t *testing.T) {
	findings := analyze("BP: 150/95, glucose: 190, cholesterol: 250")
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}
}

func TestAnalyze_NoReadings(t *testing.T) {
	if f := analyze("X-ray of left wrist, no fracture seen."); len(f) != 0 {
		t.Errorf("expected no findings, got %+v", f)
	}
}

// =========== Service Tests ===========

func TestAnalyzeRecord_PersistsFindings(t *testing.T) {
	repo := newMockInsightRepo()
	svc := NewService(repo)
	patientID := uuid.New()
	recordID := uuid.New()

	err := svc.AnalyzeRecord(context.Background(), patientID, recordID, "BP: 150/95 and glucose: 200")
	if err != nil {
		t.Fatalf("AnalyzeRecord: %v", err)
	}

	items, err := svc.ListForPatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(items))
	}
	for _, i := range items {
		if i.RecordID == nil || *i.RecordID != recordID {
			t.Error("insight should reference the source record")
		}
		if i.IsRead {
			t.Error("new insights should be unread")
		}
	}

	n, err := svc.CountForPatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("CountForPatient: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestAnalyzeRecord_NoFindings(t *testing.T) {
	repo := newMockInsightRepo()
	svc := NewService(repo)
	patientID := uuid.New()

	if err := svc.AnalyzeRecord(context.Background(), patientID, uuid.New(), "all clear"); err != nil {
		t.Fatalf("AnalyzeRecord: %v", err)
	}
	if len(repo.store) != 0 {
		t.Error("expected nothing persisted for a clean description")
	}
}

func TestMarkRead(t *testing.T) {
	repo := newMockInsightRepo()
	svc := NewService(repo)
	patientID := uuid.New()

	if err := svc.AnalyzeRecord(context.Background(), patientID, uuid.New(), "BP: 150/95"); err != nil {
		t.Fatalf("AnalyzeRecord: %v", err)
	}
	items, _ := svc.ListForPatient(context.Background(), patientID)
	if len(items) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(items))
	}

	if err := svc.MarkRead(context.Background(), patientID, items[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !repo.store[items[0].ID].IsRead {
		t.Error("expected insight to be marked read")
	}
}

func TestMarkRead_ForeignInsight(t *testing.T) {
	repo := newMockInsightRepo()
	svc := NewService(repo)
	owner := uuid.New()

	if err := svc.AnalyzeRecord(context.Background(), owner, uuid.New(), "BP: 150/95"); err != nil {
		t.Fatalf("AnalyzeRecord: %v", err)
	}
	items, _ := svc.ListForPatient(context.Background(), owner)

	if err := svc.MarkRead(context.Background(), uuid.New(), items[0].ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for another patient, got %v", err)
	}
}

func TestMarkRead_Missing(t *testing.T) {
	svc := NewService(newMockInsightRepo())
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGeneralRecommendations(t *testing.T) {
	recs := GeneralRecommendations()
	if len(recs) == 0 {
		t.Fatal("expected at least one general recommendation")
	}
}
