package records

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository defines storage operations for medical records.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	// ListAccessible returns records the grantee holds at least one active
	// permission for.
	ListAccessible(ctx context.Context, granteeID uuid.UUID) ([]*MedicalRecord, error)
}

// PermissionRepository defines storage operations for access permissions.
type PermissionRepository interface {
	Create(ctx context.Context, p *AccessPermission) error
	GetByID(ctx context.Context, id uuid.UUID) (*AccessPermission, error)
	// Revoke clears is_active and stamps revoked_at. Revoking an already
	// revoked permission re-stamps the timestamp.
	Revoke(ctx context.Context, id uuid.UUID) (*AccessPermission, error)
	// ListByRecord returns active and revoked rows, newest grant first.
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*AccessPermission, error)
	CountActiveByGrantor(ctx context.Context, grantorID uuid.UUID) (int, error)
}
