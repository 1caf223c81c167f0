package records

import (
	"time"

	"github.com/google/uuid"
)

// Record types accepted on upload.
const (
	TypeLabReport    = "lab_report"
	TypePrescription = "prescription"
	TypeImaging      = "imaging"
	TypeOther        = "other"
)

// Access levels a permission can carry.
const (
	AccessView     = "view"
	AccessDownload = "download"
)

var validRecordTypes = map[string]bool{
	TypeLabReport:    true,
	TypePrescription: true,
	TypeImaging:      true,
	TypeOther:        true,
}

// ValidRecordType reports whether the given record type is known.
func ValidRecordType(t string) bool { return validRecordTypes[t] }

// MedicalRecord maps to the medical_records table. The file itself lives
// behind FileURL; only metadata is stored here.
type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileURL     string    `db:"file_url" json:"file_url"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	RecordType  string    `db:"record_type" json:"record_type"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// AccessPermission maps to the access_permissions table. A revoked
// permission keeps its row (is_active=false, revoked_at stamped) so the
// sharing history stays auditable.
type AccessPermission struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RecordID    uuid.UUID  `db:"record_id" json:"record_id"`
	GrantedToID uuid.UUID  `db:"granted_to_id" json:"granted_to_id"`
	GrantedByID uuid.UUID  `db:"granted_by_id" json:"granted_by_id"`
	AccessLevel string     `db:"access_level" json:"access_level"`
	GrantedAt   time.Time  `db:"granted_at" json:"granted_at"`
	RevokedAt   *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
}

// PatientStats summarizes a patient's dashboard counters.
type PatientStats struct {
	RecordCount  int `json:"record_count"`
	SharedCount  int `json:"shared_count"`
	InsightCount int `json:"insight_count"`
	LedgerCount  int `json:"ledger_count"`
}
