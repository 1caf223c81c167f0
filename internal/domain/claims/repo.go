package claims

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage operations for insurance claims.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	// UpdateStatus sets the status, review notes and reviewing agent, and
	// bumps updated_at. Returns the updated row.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewNotes *string, agentID uuid.UUID) (*Claim, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Claim, error)
	ListAll(ctx context.Context) ([]*Claim, error)
	CountByStatus(ctx context.Context, statuses ...string) (int, error)
	CountAll(ctx context.Context) (int, error)
}
