package insights

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for health insights.
type Repository interface {
	Create(ctx context.Context, i *Insight) error
	GetByID(ctx context.Context, id uuid.UUID) (*Insight, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Insight, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
