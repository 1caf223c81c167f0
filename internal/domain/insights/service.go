package insights

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an insight does not exist or belongs to
// another patient.
var ErrNotFound = errors.New("insight not found")

// Service provides business logic for health insights.
type Service struct {
	insights Repository
}

// NewService creates a new insights service.
func NewService(r Repository) *Service {
	return &Service{insights: r}
}

// AnalyzeRecord scans an uploaded record's description for vital-sign
// readings and persists one insight per finding. It satisfies the records
// domain's Analyzer interface.
func (s *Service) AnalyzeRecord(ctx context.Context, patientID, recordID uuid.UUID, description string) error {
	for _, f := range analyze(description) {
		recs := f.Recommendations
		i := &Insight{
			PatientID:       patientID,
			RecordID:        &recordID,
			InsightType:     f.InsightType,
			Severity:        f.Severity,
			Title:           f.Title,
			Description:     f.Description,
			Recommendations: &recs,
		}
		if err := s.insights.Create(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// ListForPatient returns the patient's insights, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Insight, error) {
	return s.insights.ListByPatient(ctx, patientID)
}

// CountForPatient reports how many insights a patient has. It satisfies the
// records domain's InsightCounter interface.
func (s *Service) CountForPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.insights.CountByPatient(ctx, patientID)
}

// MarkRead marks an insight as read. Only its patient may do so; a foreign
// insight is indistinguishable from a missing one.
func (s *Service) MarkRead(ctx context.Context, patientID, insightID uuid.UUID) error {
	i, err := s.insights.GetByID(ctx, insightID)
	if err != nil || i.PatientID != patientID {
		return ErrNotFound
	}
	return s.insights.MarkRead(ctx, insightID)
}
