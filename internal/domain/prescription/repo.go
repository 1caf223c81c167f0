package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines storage operations for prescriptions and their items.
type Repository interface {
	Create(ctx context.Context, p *Prescription, items []*Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*Item, error)
	// MarkDispensed transitions a pending prescription and stamps who and
	// when. Returns the updated row.
	MarkDispensed(ctx context.Context, id, pharmacyID uuid.UUID, at time.Time) (*Prescription, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	ListAll(ctx context.Context) ([]*Prescription, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID, status string) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	CountDispensedSince(ctx context.Context, pharmacyID uuid.UUID, since time.Time) (int, error)
}
